// Package httpapi is the JSON/HTTP surface of the server. Every response
// uses the envelope {success, data, error, message}.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/services"
)

type AuthAPI interface {
	IssueNonce(ctx context.Context) (*services.NonceChallenge, error)
	Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	LoginWithWallet(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	GetCurrentSession(ctx context.Context, token string) (*models.AuthSession, error)
	GetCurrentUser(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	IsWalletRegistered(ctx context.Context, address string) (bool, error)
}

type APIKeyAPI interface {
	SaveUserAPIKey(ctx context.Context, userID, apiKey string) error
	GetUserAPIKeyStatus(ctx context.Context, userID string) services.APIKeyStatus
	RemoveUserAPIKey(ctx context.Context, userID string) error
}

type ProjectAPI interface {
	CreateProject(ctx context.Context, ownerID, name, description string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]*models.Project, error)
	GetProject(ctx context.Context, projectID, userID string) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID, userID, name, description string) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID string) error
	RoleFor(ctx context.Context, projectID, userID string) (models.Role, error)
	Authorize(ctx context.Context, projectID, userID string, action rbac.Action) (*models.Project, models.Role, error)
	ListCollaborators(ctx context.Context, projectID, userID string) ([]*models.ProjectCollaborator, error)
	RemoveCollaborator(ctx context.Context, projectID, requesterID, userID string) error
	CreateView(ctx context.Context, projectID, userID, name string) (*models.View, error)
	ListViews(ctx context.Context, projectID, userID string) ([]*models.View, error)
	DeleteView(ctx context.Context, viewID, userID string) error
}

type InvitationAPI interface {
	InviteCollaborator(ctx context.Context, projectID, email, inviterID string) (*services.InviteResult, error)
	AcceptInvitation(ctx context.Context, invitationID, userID string) (*services.AcceptResult, error)
	GetInvitationWithProject(ctx context.Context, invitationID string) (*models.InvitationWithProject, error)
	GetPendingInvitationsForEmail(ctx context.Context, email string) ([]*models.Invitation, error)
	GetProjectInvitations(ctx context.Context, projectID string) ([]*models.Invitation, error)
	CancelInvitation(ctx context.Context, invitationID, requesterID string) error
}

type WorkItemAPI interface {
	CreateIssue(ctx context.Context, userID string, in services.IssueInput) (*models.Issue, error)
	ListIssues(ctx context.Context, userID string, filter models.IssueFilter) ([]*models.Issue, error)
	GetIssue(ctx context.Context, issueID, userID string) (*models.Issue, error)
	UpdateIssue(ctx context.Context, issueID, userID string, patch models.IssuePatch) (*models.Issue, error)
	DeleteIssue(ctx context.Context, issueID, userID string) error
	AddComment(ctx context.Context, issueID, userID, body string) (*models.Comment, error)
	ListComments(ctx context.Context, issueID, userID string) ([]*models.Comment, error)
}

type DocumentAPI interface {
	Upload(ctx context.Context, userID string, in services.UploadInput) (*models.Document, error)
	ListDocuments(ctx context.Context, userID string, ref models.ContextRef) ([]*models.Document, error)
	DownloadURL(ctx context.Context, documentID, userID string) (*services.DownloadLink, error)
	DeleteDocument(ctx context.Context, documentID, userID string) error
	AddLink(ctx context.Context, userID string, ref models.ContextRef, title, rawURL string) (*models.Link, error)
	ListLinks(ctx context.Context, userID string, ref models.ContextRef) ([]*models.Link, error)
	DeleteLink(ctx context.Context, linkID, userID string) error
}

type AIAPI interface {
	Chat(ctx context.Context, userID string, ref models.ContextRef, content, model string) (*services.ChatResult, error)
	GetConversation(ctx context.Context, userID string, ref models.ContextRef) ([]*models.AIMessage, error)
	ClearConversation(ctx context.Context, userID string, ref models.ContextRef) error
}

// Deps bundles everything the router dispatches to. ChatProxy may be nil,
// in which case /api/chat is not mounted.
type Deps struct {
	Auth        AuthAPI
	APIKeys     APIKeyAPI
	Projects    ProjectAPI
	Invitations InvitationAPI
	WorkItems   WorkItemAPI
	Documents   DocumentAPI
	AI          AIAPI
	ChatProxy   http.Handler
}
