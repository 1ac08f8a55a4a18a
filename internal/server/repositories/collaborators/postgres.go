// Package collaborators provides the PostgreSQL-backed project membership
// repository.
package collaborators

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts a membership. An existing (project, user) pair is left as it
// is and reported as common.ErrorAlreadyExists; the statement itself does not
// fail, so a surrounding transaction stays usable.
func (r *PostgresRepository) Add(ctx context.Context, c *models.ProjectCollaborator) error {
	query :=
		`INSERT INTO project_collaborators (project_id, user_id, role, invited_at, accepted_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, user_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, c.ProjectID, c.UserID, string(c.Role), c.InvitedAt, c.AcceptedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, projectID, userID string) (*models.ProjectCollaborator, error) {
	query :=
		`SELECT project_id, user_id, role, invited_at, accepted_at FROM project_collaborators
		 WHERE project_id = $1 AND user_id = $2`

	c := &models.ProjectCollaborator{}
	var role string
	var acceptedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, projectID, userID).
		Scan(&c.ProjectID, &c.UserID, &role, &c.InvitedAt, &acceptedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Role = models.Role(role)
	if acceptedAt.Valid {
		c.AcceptedAt = &acceptedAt.Time
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, projectID string) ([]*models.ProjectCollaborator, error) {
	query :=
		`SELECT project_id, user_id, role, invited_at, accepted_at FROM project_collaborators
		 WHERE project_id = $1
		 ORDER BY invited_at`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ProjectCollaborator
	for rows.Next() {
		c := &models.ProjectCollaborator{}
		var role string
		var acceptedAt sql.NullTime
		if err := rows.Scan(&c.ProjectID, &c.UserID, &role, &c.InvitedAt, &acceptedAt); err != nil {
			return nil, err
		}
		c.Role = models.Role(role)
		if acceptedAt.Valid {
			t := acceptedAt.Time
			c.AcceptedAt = &t
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, projectID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM project_collaborators WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
