package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
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

var userCols = []string{"id", "email", "wallet_address", "encrypted_api_key", "created_at", "updated_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*wallet_address\).*RETURNING\s+created_at,\s*updated_at$`).
		WithArgs("u-1", "a@b.co", "0xabc").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "a@b.co", WalletAddress: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1"})
	require.ErrorContains(t, err, "db error: db down")
}

func TestGetByWallet_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+lower\(wallet_address\)\s*=\s*lower\(\$1\)$`).
		WithArgs("0xABC").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.co", "0xabc", "iv:tag:ct", now, now))

	got, err := repo.GetByWallet(context.Background(), "0xABC")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	require.NotNil(t, got.EncryptedAPIKey)
	assert.Equal(t, "iv:tag:ct", *got.EncryptedAPIKey)
}

func TestGetByEmail_NullAPIKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE\s+lower\(email\)\s*=\s*lower\(\$1\)$`).
		WithArgs("A@B.co").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "a@b.co", "0xabc", nil, now, now))

	got, err := repo.GetByEmail(context.Background(), "A@B.co")
	require.NoError(t, err)
	assert.Nil(t, got.EncryptedAPIKey)
	assert.False(t, got.HasAPIKey())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1$`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+id\s*=\s*\$1$`).WithArgs("u-1").WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	require.ErrorContains(t, err, "db error: db err")
}

func TestSetEncryptedAPIKey(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+encrypted_api_key\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1$`

	t.Run("stores token", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		tok := "iv:tag:ct"
		mock.ExpectExec(q).WithArgs("u-1", "iv:tag:ct").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.SetEncryptedAPIKey(context.Background(), "u-1", &tok))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.SetEncryptedAPIKey(context.Background(), "ghost", nil), common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(q).WillReturnError(errors.New("boom"))
		require.ErrorContains(t, repo.SetEncryptedAPIKey(context.Background(), "u-1", nil), "db error")
	})
}
