// Package issues provides the PostgreSQL-backed issue repository. Listing
// filters and partial updates are assembled with squirrel.
package issues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var issueCols = []string{
	"id", "project_id", "view_id", "parent_id", "title", "description",
	"status", "priority", "created_by", "created_at", "updated_at",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (*models.Issue, error) {
	i := &models.Issue{}
	var parentID sql.NullString
	var status string
	if err := s.Scan(&i.ID, &i.ProjectID, &i.ViewID, &parentID, &i.Title, &i.Description,
		&status, &i.Priority, &i.CreatedBy, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	if parentID.Valid {
		i.ParentID = &parentID.String
	}
	i.Status = models.IssueStatus(status)
	return i, nil
}

func (r *PostgresRepository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	query, args, err := psql.Insert("issues").
		Columns("id", "project_id", "view_id", "parent_id", "title", "description", "status", "priority", "created_by").
		Values(issue.ID, issue.ProjectID, issue.ViewID, issue.ParentID, issue.Title, issue.Description,
			string(issue.Status), issue.Priority, issue.CreatedBy).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&issue.CreatedAt, &issue.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	query, args, err := psql.Select(issueCols...).From("issues").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	issue, err := scanIssue(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter models.IssueFilter) ([]*models.Issue, error) {
	b := psql.Select(issueCols...).From("issues").
		Where(sq.Eq{"view_id": filter.ViewID}).
		OrderBy("priority DESC", "created_at")

	if filter.ParentID != nil {
		if *filter.ParentID == "" {
			b = b.Where(sq.Eq{"parent_id": nil})
		} else {
			b = b.Where(sq.Eq{"parent_id": *filter.ParentID})
		}
	}
	if filter.Status != nil {
		b = b.Where(sq.Eq{"status": string(*filter.Status)})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies the non-nil fields of patch and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.IssuePatch) (*models.Issue, error) {
	b := psql.Update("issues").Set("updated_at", sq.Expr("now()"))
	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		b = b.Set("description", *patch.Description)
	}
	if patch.Status != nil {
		b = b.Set("status", string(*patch.Status))
	}
	if patch.Priority != nil {
		b = b.Set("priority", *patch.Priority)
	}

	query, args, err := b.Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(issueCols, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	issue, err := scanIssue(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return issue, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
