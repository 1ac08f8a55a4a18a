package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

type Invitation struct {
	ID         string
	ProjectID  string
	Email      string
	InvitedBy  string
	Status     InvitationStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

// Stale reports a pending invitation whose expiry has passed at now.
func (i *Invitation) Stale(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiresAt)
}

// InvitationWithProject is an invitation joined with its project for display.
type InvitationWithProject struct {
	Invitation
	ProjectName        string
	ProjectDescription string
}
