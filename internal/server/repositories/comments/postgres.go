// Package comments provides the PostgreSQL-backed issue comment repository.
package comments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (id, issue_id, author_id, body) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		c.ID, c.IssueID, c.AuthorID, c.Body).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByIssue(ctx context.Context, issueID string) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, issue_id, author_id, body, created_at FROM comments WHERE issue_id = $1 ORDER BY created_at`, issueID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.IssueID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
