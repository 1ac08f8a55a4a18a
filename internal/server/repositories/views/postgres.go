// Package views provides the PostgreSQL-backed view repository.
package views

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

func (r *PostgresRepository) Create(ctx context.Context, v *models.View) (*models.View, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO views (id, project_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		v.ID, v.ProjectID, v.Name).Scan(&v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.View, error) {
	v := &models.View{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, created_at FROM views WHERE id = $1`, id).
		Scan(&v.ID, &v.ProjectID, &v.Name, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.View, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, created_at FROM views WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.View
	for rows.Next() {
		v := &models.View{}
		if err := rows.Scan(&v.ID, &v.ProjectID, &v.Name, &v.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM views WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
