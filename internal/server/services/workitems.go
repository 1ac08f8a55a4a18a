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

// IssueInput is a new issue. A non-empty ParentID must name an issue in the
// same view.
type IssueInput struct {
	ViewID      string
	ParentID    *string
	Title       string
	Description string
	Status      models.IssueStatus
	Priority    int
}

// WorkItemService manages issues and their comments inside project views.
type WorkItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      Authorizer
	log         logging.Logger
}

// NewWorkItemService constructs a WorkItemService.
func NewWorkItemService(db *sql.DB, m repomanager.RepositoryManager, access Authorizer, log logging.Logger) *WorkItemService {
	return &WorkItemService{db: db, repomanager: m, access: access, log: log.With("module", "workitems")}
}

func validPriority(p int) bool {
	return p >= 0 && p <= models.MaxIssuePriority
}

func (s *WorkItemService) loadIssue(ctx context.Context, issueID string) (*models.Issue, error) {
	issue, err := s.repomanager.Issues(s.db).GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load issue", err, common.ErrNotFound)
	}
	return issue, nil
}

// CreateIssue adds an issue to a view.
func (s *WorkItemService) CreateIssue(ctx context.Context, userID string, in IssueInput) (*models.Issue, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.Invalid("Issue title is required")
	}
	if in.Status == "" {
		in.Status = models.IssueTodo
	}
	if !in.Status.Valid() {
		return nil, common.Invalid("Unknown issue status")
	}
	if !validPriority(in.Priority) {
		return nil, common.Invalid("Priority must be between 0 and 4")
	}

	view, err := s.repomanager.Views(s.db).GetByID(ctx, in.ViewID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load view", err, common.ErrNotFound)
	}
	if _, _, err := s.access.Authorize(ctx, view.ProjectID, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}

	if in.ParentID != nil && *in.ParentID != "" {
		parent, err := s.loadIssue(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ViewID != view.ID {
			return nil, common.Invalid("Parent issue belongs to another view")
		}
	} else {
		in.ParentID = nil
	}

	issue, err := s.repomanager.Issues(s.db).Create(ctx, &models.Issue{
		ID:          newID(),
		ProjectID:   view.ProjectID,
		ViewID:      view.ID,
		ParentID:    in.ParentID,
		Title:       title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, unknown(ctx, s.log, "create issue", err)
	}
	return issue, nil
}

// ListIssues returns the issues of a view matching filter.
func (s *WorkItemService) ListIssues(ctx context.Context, userID string, filter models.IssueFilter) ([]*models.Issue, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, common.Invalid("Unknown issue status")
	}
	view, err := s.repomanager.Views(s.db).GetByID(ctx, filter.ViewID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load view", err, common.ErrNotFound)
	}
	if _, _, err := s.access.Authorize(ctx, view.ProjectID, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Issues(s.db).List(ctx, filter)
	if err != nil {
		return nil, unknown(ctx, s.log, "list issues", err)
	}
	return list, nil
}

// GetIssue returns a single issue.
func (s *WorkItemService) GetIssue(ctx context.Context, issueID, userID string) (*models.Issue, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Authorize(ctx, issue.ProjectID, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	return issue, nil
}

// UpdateIssue applies the non-nil fields of patch.
func (s *WorkItemService) UpdateIssue(ctx context.Context, issueID, userID string, patch models.IssuePatch) (*models.Issue, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, common.Invalid("Issue title is required")
		}
		patch.Title = &t
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, common.Invalid("Unknown issue status")
	}
	if patch.Priority != nil && !validPriority(*patch.Priority) {
		return nil, common.Invalid("Priority must be between 0 and 4")
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Authorize(ctx, issue.ProjectID, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return issue, nil
	}

	updated, err := s.repomanager.Issues(s.db).Update(ctx, issueID, patch)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "update issue", err, common.ErrNotFound)
	}
	return updated, nil
}

// DeleteIssue removes an issue.
func (s *WorkItemService) DeleteIssue(ctx context.Context, issueID, userID string) error {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if _, _, err := s.access.Authorize(ctx, issue.ProjectID, userID, rbac.ActionWrite); err != nil {
		return err
	}
	if err := s.repomanager.Issues(s.db).Delete(ctx, issueID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return unknown(ctx, s.log, "delete issue", err)
	}
	return nil
}

// AddComment appends a comment to an issue.
func (s *WorkItemService) AddComment(ctx context.Context, issueID, userID, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.Invalid("Comment cannot be empty")
	}
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Authorize(ctx, issue.ProjectID, userID, rbac.ActionWrite); err != nil {
		return nil, err
	}
	c, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		ID:       newID(),
		IssueID:  issueID,
		AuthorID: userID,
		Body:     body,
	})
	if err != nil {
		return nil, unknown(ctx, s.log, "create comment", err)
	}
	return c, nil
}

// ListComments returns an issue's comments, oldest first.
func (s *WorkItemService) ListComments(ctx context.Context, issueID, userID string) ([]*models.Comment, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access.Authorize(ctx, issue.ProjectID, userID, rbac.ActionRead); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Comments(s.db).ListByIssue(ctx, issueID)
	if err != nil {
		return nil, unknown(ctx, s.log, "list comments", err)
	}
	return list, nil
}
