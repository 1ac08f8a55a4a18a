package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/auth"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/session"
	"github.com/dmitrijs2005/slothapp/internal/wallet"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-session-secret")

type authFixture struct {
	svc   *AuthService
	m     *fakeManager
	store *session.MemoryStore
	key   *ecdsa.PrivateKey
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	m := newFakeManager()
	store := session.NewMemoryStore()
	svc := NewAuthService(nil, m, store, store, AuthConfig{SessionSecret: testSecret}, logging.Nop())
	return &authFixture{svc: svc, m: m, store: store, key: key}
}

func (f *authFixture) address() string { return wallet.AddressOf(f.key) }

// challenge issues a nonce and signs it with the fixture wallet.
func (f *authFixture) challenge(t *testing.T) (nonce, signature string) {
	t.Helper()
	ch, err := f.svc.IssueNonce(context.Background())
	require.NoError(t, err)
	sig, err := wallet.SignMessage(ch.Message, f.key)
	require.NoError(t, err)
	return ch.Nonce, sig
}

func TestAuthService_IssueNonce(t *testing.T) {
	f := newAuthFixture(t)
	ch, err := f.svc.IssueNonce(context.Background())
	require.NoError(t, err)
	assert.Len(t, ch.Nonce, 32)
	assert.Equal(t, wallet.GenerateAuthMessage(ch.Nonce), ch.Message)
	assert.True(t, ch.ExpiresAt.After(time.Now()))
}

func TestAuthService_Signup(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	nonce, sig := f.challenge(t)

	res, err := f.svc.Signup(ctx, SignupInput{
		Email:         "  Alice@Example.COM ",
		WalletAddress: f.address(),
		Signature:     sig,
		Nonce:         nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, strings.ToLower(f.address()), res.User.WalletAddress)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, res.User.ID, res.Session.UserID)

	claims, err := auth.ParseToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, claims.SessionID())

	u, err := f.svc.GetCurrentUser(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, u.ID)
}

func TestAuthService_Signup_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	nonce, sig := f.challenge(t)

	_, err := f.svc.Signup(ctx, SignupInput{Email: "nope", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrInvalidEmail)

	_, err = f.svc.Signup(ctx, SignupInput{Email: "a@b.co", WalletAddress: "0x123", Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrInvalidWalletAddress)

	other, _ := ethcrypto.GenerateKey()
	_, err = f.svc.Signup(ctx, SignupInput{Email: "a@b.co", WalletAddress: wallet.AddressOf(other), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrInvalidSignature)

	// a failed signature check must not burn the nonce
	_, err = f.svc.Signup(ctx, SignupInput{Email: "a@b.co", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	require.NoError(t, err)
}

func TestAuthService_Signup_NonceIsSingleUse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	nonce, sig := f.challenge(t)

	_, err := f.svc.Signup(ctx, SignupInput{Email: "a@b.co", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	require.NoError(t, err)

	_, err = f.svc.LoginWithWallet(ctx, LoginInput{WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrInvalidNonce)
}

func TestAuthService_Signup_UnknownNonce(t *testing.T) {
	f := newAuthFixture(t)
	nonce := "deadbeefdeadbeefdeadbeefdeadbeef"
	sig, err := wallet.SignMessage(wallet.GenerateAuthMessage(nonce), f.key)
	require.NoError(t, err)

	_, err = f.svc.Signup(context.Background(), SignupInput{Email: "a@b.co", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrInvalidNonce)
}

func TestAuthService_Signup_Duplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.m.addUser("u1", "taken@example.com", strings.ToLower(f.address()))

	nonce, sig := f.challenge(t)
	_, err := f.svc.Signup(ctx, SignupInput{Email: "new@example.com", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrWalletExists)

	f2 := newAuthFixture(t)
	f2.m.addUser("u1", "taken@example.com", "0x0000000000000000000000000000000000000001")
	nonce, sig = f2.challenge(t)
	_, err = f2.svc.Signup(ctx, SignupInput{Email: "TAKEN@example.com", WalletAddress: f2.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrEmailExists)
}

func TestAuthService_Signup_RepositoryFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.m.users.getErr = errors.New("connection reset")
	nonce, sig := f.challenge(t)

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@b.co", WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrUnknown)
	assert.Equal(t, common.KindUnknown, common.CodeOf(err).Kind())
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	nonce, sig := f.challenge(t)
	_, err := f.svc.LoginWithWallet(ctx, LoginInput{WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	assert.ErrorIs(t, err, common.ErrWalletNotRegistered)

	f.m.addUser("u1", "a@b.co", strings.ToLower(f.address()))
	nonce, sig = f.challenge(t)
	res, err := f.svc.LoginWithWallet(ctx, LoginInput{WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)

	nonce, sig = f.challenge(t)
	res2, err := f.svc.LoginWithWallet(ctx, LoginInput{WalletAddress: f.address(), Signature: sig, Nonce: nonce})
	require.NoError(t, err)
	assert.NotEqual(t, res.Session.ID, res2.Session.ID)
}

func TestAuthService_SessionExpiryClearsSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.m.addUser("u1", "a@b.co", strings.ToLower(f.address()))

	st, err := f.svc.CreateSession(ctx, user)
	require.NoError(t, err)

	sess, err := f.svc.GetCurrentSession(ctx, st.Token)
	require.NoError(t, err)
	assert.Equal(t, st.Session.ID, sess.ID)

	f.svc.now = func() time.Time { return st.Session.ExpiresAt.Add(time.Second) }
	_, err = f.svc.GetCurrentSession(ctx, st.Token)
	assert.ErrorIs(t, err, common.ErrNoSession)

	_, err = f.store.Get(ctx, st.Session.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestAuthService_RejectsForeignToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetCurrentSession(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrNoSession)

	forged, err := auth.GenerateToken(&models.AuthSession{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, []byte("other"))
	require.NoError(t, err)
	_, err = f.svc.GetCurrentSession(ctx, forged)
	assert.ErrorIs(t, err, common.ErrNoSession)

	// valid signature, but the session was never stored
	orphan, err := auth.GenerateToken(&models.AuthSession{ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, testSecret)
	require.NoError(t, err)
	_, err = f.svc.GetCurrentSession(ctx, orphan)
	assert.ErrorIs(t, err, common.ErrNoSession)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.m.addUser("u1", "a@b.co", strings.ToLower(f.address()))

	st, err := f.svc.CreateSession(ctx, user)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, st.Token))
	_, err = f.svc.GetCurrentSession(ctx, st.Token)
	assert.ErrorIs(t, err, common.ErrNoSession)

	assert.NoError(t, f.svc.Logout(ctx, "not-a-token"))
	assert.NoError(t, f.svc.Logout(ctx, st.Token))
}

func TestAuthService_GetCurrentUser_MissingRow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := &models.User{ID: "ghost", WalletAddress: strings.ToLower(f.address())}

	st, err := f.svc.CreateSession(ctx, user)
	require.NoError(t, err)

	_, err = f.svc.GetCurrentUser(ctx, st.Token)
	assert.ErrorIs(t, err, common.ErrNoSession)
	_, err = f.store.Get(ctx, st.Session.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestAuthService_IsWalletRegistered(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.IsWalletRegistered(ctx, "bad")
	assert.ErrorIs(t, err, common.ErrInvalidWalletAddress)

	ok, err := f.svc.IsWalletRegistered(ctx, f.address())
	require.NoError(t, err)
	assert.False(t, ok)

	f.m.addUser("u1", "a@b.co", strings.ToLower(f.address()))
	ok, err = f.svc.IsWalletRegistered(ctx, f.address())
	require.NoError(t, err)
	assert.True(t, ok)
}
