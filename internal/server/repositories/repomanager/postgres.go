// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/server/migrations"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/collaborators"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/comments"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/conversations"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/documents"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/issues"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/links"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/projects"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/users"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/views"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Collaborators(db dbx.DBTX) collaborators.Repository {
	return collaborators.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Invitations(db dbx.DBTX) invitations.Repository {
	return invitations.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Views(db dbx.DBTX) views.Repository {
	return views.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Issues(db dbx.DBTX) issues.Repository {
	return issues.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Comments(db dbx.DBTX) comments.Repository {
	return comments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Links(db dbx.DBTX) links.Repository {
	return links.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Conversations(db dbx.DBTX) conversations.Repository {
	return conversations.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
