package models

import "time"

type View struct {
	ID        string
	ProjectID string
	Name      string
	CreatedAt time.Time
}

type IssueStatus string

const (
	IssueTodo       IssueStatus = "todo"
	IssueInProgress IssueStatus = "in_progress"
	IssueDone       IssueStatus = "done"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueTodo, IssueInProgress, IssueDone:
		return true
	}
	return false
}

const MaxIssuePriority = 4

type Issue struct {
	ID          string
	ProjectID   string
	ViewID      string
	ParentID    *string
	Title       string
	Description string
	Status      IssueStatus
	Priority    int
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueFilter narrows ListIssues. Nil fields are not applied; a non-nil
// ParentID pointing at "" selects top-level issues.
type IssueFilter struct {
	ViewID   string
	ParentID *string
	Status   *IssueStatus
}

// IssuePatch carries a partial update. Nil fields are left unchanged.
type IssuePatch struct {
	Title       *string
	Description *string
	Status      *IssueStatus
	Priority    *int
}

func (p IssuePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

type Comment struct {
	ID        string
	IssueID   string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}
