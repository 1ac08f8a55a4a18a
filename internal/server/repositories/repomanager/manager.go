package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/slothapp/internal/dbx"
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
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Collaborators(db dbx.DBTX) collaborators.Repository
	Invitations(db dbx.DBTX) invitations.Repository
	Views(db dbx.DBTX) views.Repository
	Issues(db dbx.DBTX) issues.Repository
	Comments(db dbx.DBTX) comments.Repository
	Documents(db dbx.DBTX) documents.Repository
	Links(db dbx.DBTX) links.Repository
	Conversations(db dbx.DBTX) conversations.Repository
}
