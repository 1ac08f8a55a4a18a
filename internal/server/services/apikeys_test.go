package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/cryptox"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIKeyFixture(t *testing.T) (*APIKeyService, *fakeManager) {
	t.Helper()
	key, err := cryptox.GenerateKey()
	require.NoError(t, err)
	box, err := cryptox.NewSecretBox(key)
	require.NoError(t, err)

	m := newFakeManager()
	m.addUser("u1", "a@example.com", "0x1")
	return NewAPIKeyService(nil, m, box, logging.Nop()), m
}

func TestAPIKeyService_RoundTrip(t *testing.T) {
	svc, m := newAPIKeyFixture(t)
	ctx := context.Background()
	const apiKey = "pplx-0123456789abcdefghij"

	assert.False(t, svc.GetUserAPIKeyStatus(ctx, "u1").HasAPIKey)

	require.NoError(t, svc.SaveUserAPIKey(ctx, "u1", "  "+apiKey+"\n"))
	stored := m.users.rows["u1"].EncryptedAPIKey
	require.NotNil(t, stored)
	assert.NotContains(t, *stored, apiKey)
	assert.True(t, svc.GetUserAPIKeyStatus(ctx, "u1").HasAPIKey)

	got, ok := svc.GetDecryptedAPIKey(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, apiKey, got)

	require.NoError(t, svc.RemoveUserAPIKey(ctx, "u1"))
	assert.Nil(t, m.users.rows["u1"].EncryptedAPIKey)
	_, ok = svc.GetDecryptedAPIKey(ctx, "u1")
	assert.False(t, ok)
}

func TestAPIKeyService_Validation(t *testing.T) {
	svc, _ := newAPIKeyFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SaveUserAPIKey(ctx, "u1", "short"), common.ErrInvalidAPIKey)
	assert.ErrorIs(t, svc.SaveUserAPIKey(ctx, "u1", "   123456789012345678   "), common.ErrInvalidAPIKey)
	assert.ErrorIs(t, svc.SaveUserAPIKey(ctx, "nobody", "01234567890123456789"), common.ErrUserNotFound)
	assert.ErrorIs(t, svc.RemoveUserAPIKey(ctx, "nobody"), common.ErrUserNotFound)
}

func TestAPIKeyService_DegradesOnFailure(t *testing.T) {
	svc, m := newAPIKeyFixture(t)
	ctx := context.Background()

	garbage := "not:a:token"
	m.users.rows["u1"].EncryptedAPIKey = &garbage
	_, ok := svc.GetDecryptedAPIKey(ctx, "u1")
	assert.False(t, ok)

	m.users.getErr = assert.AnError
	assert.False(t, svc.GetUserAPIKeyStatus(ctx, "u1").HasAPIKey)
	_, ok = svc.GetDecryptedAPIKey(ctx, "u1")
	assert.False(t, ok)
	assert.False(t, svc.GetUserAPIKeyStatus(ctx, "missing").HasAPIKey)
}
