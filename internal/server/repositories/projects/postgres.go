// Package projects provides the PostgreSQL-backed project repository.
package projects

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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (id, name, description, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description, p.OwnerID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, name, description, owner_id, created_at, updated_at FROM projects
		 WHERE id = $1`

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// ListForUser returns projects the user owns or collaborates on, most
// recently updated first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.Project, error) {
	query :=
		`SELECT DISTINCT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN project_collaborators c ON c.project_id = p.id
		 WHERE p.owner_id = $1 OR c.user_id = $1
		 ORDER BY p.updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id, name, description string) (*models.Project, error) {
	query :=
		`UPDATE projects SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, description, owner_id, created_at, updated_at`

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id, name, description).
		Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
