// Package invitations provides the PostgreSQL-backed invitation repository.
package invitations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

const invitationCols = `id, project_id, email, invited_by, status, created_at, expires_at, accepted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(s scanner, extra ...any) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var status string
	var acceptedAt sql.NullTime

	dest := append([]any{&inv.ID, &inv.ProjectID, &inv.Email, &inv.InvitedBy, &status,
		&inv.CreatedAt, &inv.ExpiresAt, &acceptedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	inv.Status = models.InvitationStatus(status)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	return inv, nil
}

// Create inserts a pending invitation. A second pending row for the same
// (project, email) violates invitations_pending_uq and returns
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	query :=
		`INSERT INTO invitations (id, project_id, email, invited_by, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		inv.ID, inv.ProjectID, inv.Email, inv.InvitedBy, string(inv.Status), inv.ExpiresAt).Scan(&inv.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	query := `SELECT ` + invitationCols + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) GetWithProject(ctx context.Context, id string) (*models.InvitationWithProject, error) {
	query :=
		`SELECT i.id, i.project_id, i.email, i.invited_by, i.status, i.created_at, i.expires_at, i.accepted_at,
		        p.name, p.description
		 FROM invitations i
		 JOIN projects p ON p.id = i.project_id
		 WHERE i.id = $1`

	var name, description string
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id), &name, &description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.InvitationWithProject{Invitation: *inv, ProjectName: name, ProjectDescription: description}, nil
}

// FindPending returns the newest pending invitation for (projectID, email),
// compared case-insensitively.
func (r *PostgresRepository) FindPending(ctx context.Context, projectID, email string) (*models.Invitation, error) {
	query := `SELECT ` + invitationCols + ` FROM invitations
		 WHERE project_id = $1 AND lower(email) = lower($2) AND status = 'pending'
		 ORDER BY created_at DESC
		 LIMIT 1`

	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, projectID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

func (r *PostgresRepository) ListPendingByEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	query := `SELECT ` + invitationCols + ` FROM invitations
		 WHERE lower(email) = lower($1) AND status = 'pending'
		 ORDER BY created_at DESC`
	return r.list(ctx, query, email)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Invitation, error) {
	query := `SELECT ` + invitationCols + ` FROM invitations
		 WHERE project_id = $1
		 ORDER BY created_at DESC`
	return r.list(ctx, query, projectID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkExpired flips a pending row to expired. Rows already in another state
// are left alone and do not count as missing.
func (r *PostgresRepository) MarkExpired(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'expired' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkAccepted flips a pending row to accepted. A row that is missing or no
// longer pending returns common.ErrorNotFound.
func (r *PostgresRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'accepted', accepted_at = $2 WHERE id = $1 AND status = 'pending'`, id, at)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
