package links

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinksRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	now := time.Now()
	ref := models.ContextRef{Type: models.ContextView, ID: "v-1"}

	mock.ExpectQuery(`^INSERT INTO links \(id,context_type,context_id,title,url,created_by\)`).
		WithArgs("l-1", "view", "v-1", "Docs", "https://example.com", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(`FROM links WHERE context_id = \$1 AND context_type = \$2`).
		WithArgs("v-1", "view").
		WillReturnRows(sqlmock.NewRows(linkCols).AddRow("l-1", "view", "v-1", "Docs", "https://example.com", "u-1", now))
	mock.ExpectQuery(`FROM links WHERE id = \$1`).WithArgs("l-1").
		WillReturnError(errors.New("boom"))
	mock.ExpectExec(`DELETE FROM links`).WithArgs("l-9").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.Create(ctx, &models.Link{ID: "l-1", Context: ref, Title: "Docs", URL: "https://example.com", CreatedBy: "u-1"})
	require.NoError(t, err)

	list, err := repo.ListByContext(ctx, ref)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ref, list[0].Context)

	_, err = repo.GetByID(ctx, "l-1")
	require.ErrorContains(t, err, "db error")

	require.ErrorIs(t, repo.Delete(ctx, "l-9"), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
