// Package documents provides the PostgreSQL-backed document metadata
// repository. File contents live in object storage under StoragePath.
package documents

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

var documentCols = []string{
	"id", "context_type", "context_id", "file_name", "storage_path",
	"content_type", "size", "uploaded_by", "created_at",
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

func scanDocument(s scanner) (*models.Document, error) {
	d := &models.Document{}
	var ct string
	if err := s.Scan(&d.ID, &ct, &d.Context.ID, &d.FileName, &d.StoragePath,
		&d.ContentType, &d.Size, &d.UploadedBy, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.Context.Type = models.ContextType(ct)
	return d, nil
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.Document) (*models.Document, error) {
	query, args, err := psql.Insert("documents").
		Columns("id", "context_type", "context_id", "file_name", "storage_path", "content_type", "size", "uploaded_by").
		Values(d.ID, string(d.Context.Type), d.Context.ID, d.FileName, d.StoragePath, d.ContentType, d.Size, d.UploadedBy).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query, args, err := psql.Select(documentCols...).From("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

// ListByContext returns the documents attached to ref, newest first.
func (r *PostgresRepository) ListByContext(ctx context.Context, ref models.ContextRef) ([]*models.Document, error) {
	query, args, err := psql.Select(documentCols...).From("documents").
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

	var result []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectAffected(res)
}
