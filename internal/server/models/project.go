package models

import "time"

type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ProjectCollaborator binds a user to a project. (ProjectID, UserID) is unique.
type ProjectCollaborator struct {
	ProjectID  string
	UserID     string
	Role       Role
	InvitedAt  time.Time
	AcceptedAt *time.Time
}
