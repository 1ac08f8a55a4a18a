// Package rbac decides what a project role may do.
package rbac

import "github.com/dmitrijs2005/slothapp/internal/server/models"

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionInvite Action = "invite"
	ActionAdmin  Action = "admin"
)

func Can(role models.Role, action Action) bool {
	switch role {
	case models.RoleOwner:
		return true
	case models.RoleEditor:
		return action == ActionRead || action == ActionWrite || action == ActionInvite
	case models.RoleViewer:
		return action == ActionRead || action == ActionInvite
	default:
		return false
	}
}

// Normalize maps a stored collaborator role to a known role. Unknown values
// get the least privileged role. Owner is never granted through this path.
func Normalize(role string) models.Role {
	switch models.Role(role) {
	case models.RoleEditor, models.RoleViewer:
		return models.Role(role)
	default:
		return models.RoleViewer
	}
}
