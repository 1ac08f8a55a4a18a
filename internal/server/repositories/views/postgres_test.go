package views

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

func TestViewsRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`INSERT\s+INTO\s+views`).WithArgs("v-1", "p-1", "Board").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`FROM\s+views\s+WHERE\s+id\s*=\s*\$1`).WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM\s+views\s+WHERE\s+project_id\s*=\s*\$1`).WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "name", "created_at"}).
			AddRow("v-1", "p-1", "Board", now))
	mock.ExpectExec(`DELETE\s+FROM\s+views`).WithArgs("v-1").WillReturnResult(sqlmock.NewResult(0, 1))

	v, err := repo.Create(ctx, &models.View{ID: "v-1", ProjectID: "p-1", Name: "Board"})
	require.NoError(t, err)
	assert.Equal(t, now, v.CreatedAt)

	_, err = repo.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)

	list, err := repo.ListByProject(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "v-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
