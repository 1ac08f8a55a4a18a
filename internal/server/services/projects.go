package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
)

// Authorizer answers project access questions for the services that hang
// data off a project.
type Authorizer interface {
	Authorize(ctx context.Context, projectID, userID string, action rbac.Action) (*models.Project, models.Role, error)
	AuthorizeContext(ctx context.Context, ref models.ContextRef, userID string, action rbac.Action) (string, error)
}

// ProjectService manages projects, their members and views, and answers
// access questions for the other services.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ProjectService {
	return &ProjectService{db: db, repomanager: m, log: log.With("module", "projects")}
}

func (s *ProjectService) loadProject(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.repomanager.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load project", err, common.ErrProjectNotFound)
	}
	return p, nil
}

func (s *ProjectService) roleIn(ctx context.Context, p *models.Project, userID string) (models.Role, error) {
	if p.OwnerID == userID {
		return models.RoleOwner, nil
	}
	c, err := s.repomanager.Collaborators(s.db).Get(ctx, p.ID, userID)
	if err != nil {
		return "", notFoundOr(ctx, s.log, "load collaborator", err, common.ErrUnauthorized)
	}
	return rbac.Normalize(string(c.Role)), nil
}

// RoleFor returns the caller's role in the project. Non-members get
// ErrUnauthorized.
func (s *ProjectService) RoleFor(ctx context.Context, projectID, userID string) (models.Role, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	return s.roleIn(ctx, p, userID)
}

// Authorize loads the project and checks that userID's role allows action.
func (s *ProjectService) Authorize(ctx context.Context, projectID, userID string, action rbac.Action) (*models.Project, models.Role, error) {
	p, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	role, err := s.roleIn(ctx, p, userID)
	if err != nil {
		return nil, "", err
	}
	if !rbac.Can(role, action) {
		return nil, "", common.ErrUnauthorized
	}
	return p, role, nil
}

// ResolveContext maps an attachment context to the project that owns it.
func (s *ProjectService) ResolveContext(ctx context.Context, ref models.ContextRef) (string, error) {
	switch ref.Type {
	case models.ContextProject:
		p, err := s.loadProject(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return p.ID, nil
	case models.ContextView:
		v, err := s.repomanager.Views(s.db).GetByID(ctx, ref.ID)
		if err != nil {
			return "", notFoundOr(ctx, s.log, "load view", err, common.ErrNotFound)
		}
		return v.ProjectID, nil
	case models.ContextIssue:
		i, err := s.repomanager.Issues(s.db).GetByID(ctx, ref.ID)
		if err != nil {
			return "", notFoundOr(ctx, s.log, "load issue", err, common.ErrNotFound)
		}
		return i.ProjectID, nil
	}
	return "", common.Invalid("Unknown context type")
}

// AuthorizeContext resolves ref to its project and authorizes action there.
func (s *ProjectService) AuthorizeContext(ctx context.Context, ref models.ContextRef, userID string, action rbac.Action) (string, error) {
	projectID, err := s.ResolveContext(ctx, ref)
	if err != nil {
		return "", err
	}
	if _, _, err := s.Authorize(ctx, projectID, userID, action); err != nil {
		return "", err
	}
	return projectID, nil
}

// CreateProject creates a project owned by ownerID.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Invalid("Project name is required")
	}
	p, err := s.repomanager.Projects(s.db).Create(ctx, &models.Project{
		ID:          newID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, unknown(ctx, s.log, "create project", err)
	}
	return p, nil
}

// ListProjects returns projects the user owns or collaborates on.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]*models.Project, error) {
	list, err := s.repomanager.Projects(s.db).ListForUser(ctx, userID)
	if err != nil {
		return nil, unknown(ctx, s.log, "list projects", err)
	}
	return list, nil
}

// GetProject returns a project the caller can read.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID string) (*models.Project, error) {
	p, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionRead)
	return p, err
}

// UpdateProject changes name and description.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, userID, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Invalid("Project name is required")
	}
	if _, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	p, err := s.repomanager.Projects(s.db).Update(ctx, projectID, name, strings.TrimSpace(description))
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "update project", err, common.ErrProjectNotFound)
	}
	return p, nil
}

// DeleteProject is restricted to the owner.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, userID string) error {
	if _, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionAdmin); err != nil {
		return err
	}
	if err := s.repomanager.Projects(s.db).Delete(ctx, projectID); err != nil {
		return notFoundOr(ctx, s.log, "delete project", err, common.ErrProjectNotFound)
	}
	return nil
}

// ListCollaborators returns the project's members other than the owner.
func (s *ProjectService) ListCollaborators(ctx context.Context, projectID, userID string) ([]*models.ProjectCollaborator, error) {
	if _, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Collaborators(s.db).List(ctx, projectID)
	if err != nil {
		return nil, unknown(ctx, s.log, "list collaborators", err)
	}
	return list, nil
}

// RemoveCollaborator is restricted to the owner, who cannot be removed.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID, requesterID, userID string) error {
	p, _, err := s.Authorize(ctx, projectID, requesterID, rbac.ActionAdmin)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return common.Invalid("The project owner cannot be removed")
	}
	if err := s.repomanager.Collaborators(s.db).Remove(ctx, projectID, userID); err != nil {
		return notFoundOr(ctx, s.log, "remove collaborator", err, common.ErrUserNotFound)
	}
	return nil
}

// CreateView adds a named view to a project.
func (s *ProjectService) CreateView(ctx context.Context, projectID, userID, name string) (*models.View, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.Invalid("View name is required")
	}
	if _, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	v, err := s.repomanager.Views(s.db).Create(ctx, &models.View{ID: newID(), ProjectID: projectID, Name: name})
	if err != nil {
		return nil, unknown(ctx, s.log, "create view", err)
	}
	return v, nil
}

// ListViews returns the views of a project.
func (s *ProjectService) ListViews(ctx context.Context, projectID, userID string) ([]*models.View, error) {
	if _, _, err := s.Authorize(ctx, projectID, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Views(s.db).ListByProject(ctx, projectID)
	if err != nil {
		return nil, unknown(ctx, s.log, "list views", err)
	}
	return list, nil
}

// DeleteView removes a view.
func (s *ProjectService) DeleteView(ctx context.Context, viewID, userID string) error {
	views := s.repomanager.Views(s.db)
	v, err := views.GetByID(ctx, viewID)
	if err != nil {
		return notFoundOr(ctx, s.log, "load view", err, common.ErrNotFound)
	}
	if _, _, err := s.Authorize(ctx, v.ProjectID, userID, rbac.ActionWrite); err != nil {
		return err
	}
	if err := views.Delete(ctx, viewID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return unknown(ctx, s.log, "delete view", err)
	}
	return nil
}
