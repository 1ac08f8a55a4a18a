package conversations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetOrCreate_ReturnsExistingID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	ref := models.ContextRef{Type: models.ContextIssue, ID: "i-1"}

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+ai_conversations.*ON\s+CONFLICT\s+\(context_type,\s*context_id,\s*user_id\)`).
		WithArgs("new-id", "issue", "i-1", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", now))

	conv, err := repo.GetOrCreate(context.Background(), &models.AIConversation{ID: "new-id", Context: ref, UserID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", conv.ID)
	assert.Equal(t, ref, conv.Context)
}

func TestFind_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+ai_conversations`).WithArgs("view", "v-1", "u-1").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), models.ContextRef{Type: models.ContextView, ID: "v-1"}, "u-1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMessages(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT\s+INTO\s+ai_messages`).WithArgs("m-1", "c-1", "user", "hi").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`FROM\s+ai_messages`).WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "role", "content", "created_at"}).
			AddRow("m-1", "c-1", "user", "hi", now).
			AddRow("m-2", "c-1", "assistant", "hello", now))
	mock.ExpectExec(`DELETE\s+FROM\s+ai_messages`).WithArgs("c-1").WillReturnResult(sqlmock.NewResult(0, 2))

	m := &models.AIMessage{ID: "m-1", ConversationID: "c-1", Role: models.MessageUser, Content: "hi"}
	require.NoError(t, repo.AppendMessage(context.Background(), m))
	assert.Equal(t, now, m.CreatedAt)

	list, err := repo.ListMessages(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.MessageAssistant, list[1].Role)

	require.NoError(t, repo.ClearMessages(context.Background(), "c-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
