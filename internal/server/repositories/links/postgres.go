// Package links provides the PostgreSQL-backed link repository.
package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var linkCols = []string{"id", "context_type", "context_id", "title", "url", "created_by", "created_at"}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(s scanner) (*models.Link, error) {
	l := &models.Link{}
	var ct string
	if err := s.Scan(&l.ID, &ct, &l.Context.ID, &l.Title, &l.URL, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Context.Type = models.ContextType(ct)
	return l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, l *models.Link) (*models.Link, error) {
	query, args, err := psql.Insert("links").
		Columns("id", "context_type", "context_id", "title", "url", "created_by").
		Values(l.ID, string(l.Context.Type), l.Context.ID, l.Title, l.URL, l.CreatedBy).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&l.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Link, error) {
	query, args, err := psql.Select(linkCols...).From("links").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	l, err := scanLink(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return l, nil
}

func (r *PostgresRepository) ListByContext(ctx context.Context, ref models.ContextRef) ([]*models.Link, error) {
	query, args, err := psql.Select(linkCols...).From("links").
		Where(sq.Eq{"context_type": string(ref.Type), "context_id": ref.ID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
