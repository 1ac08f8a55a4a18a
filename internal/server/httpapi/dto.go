package httpapi

import (
	"time"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
)

type userDTO struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"walletAddress"`
	HasAPIKey     bool      `json:"hasApiKey"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toUser(u *models.User) userDTO {
	return userDTO{
		ID:            u.ID,
		Email:         u.Email,
		WalletAddress: u.WalletAddress,
		HasAPIKey:     u.HasAPIKey(),
		CreatedAt:     u.CreatedAt,
	}
}

type sessionDTO struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	WalletAddress string    `json:"walletAddress"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toSession(s *models.AuthSession) sessionDTO {
	return sessionDTO{
		ID:            s.ID,
		UserID:        s.UserID,
		WalletAddress: s.WalletAddress,
		ExpiresAt:     s.ExpiresAt,
		CreatedAt:     s.CreatedAt,
	}
}

type projectDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProject(p *models.Project) projectDTO {
	return projectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type collaboratorDTO struct {
	UserID     string     `json:"userId"`
	Role       string     `json:"role"`
	InvitedAt  time.Time  `json:"invitedAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

type invitationDTO struct {
	ID                 string     `json:"id"`
	ProjectID          string     `json:"projectId"`
	Email              string     `json:"email"`
	InvitedBy          string     `json:"invitedBy"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	AcceptedAt         *time.Time `json:"acceptedAt,omitempty"`
	ProjectName        string     `json:"projectName,omitempty"`
	ProjectDescription string     `json:"projectDescription,omitempty"`
}

func toInvitation(i *models.Invitation) invitationDTO {
	return invitationDTO{
		ID:         i.ID,
		ProjectID:  i.ProjectID,
		Email:      i.Email,
		InvitedBy:  i.InvitedBy,
		Status:     string(i.Status),
		CreatedAt:  i.CreatedAt,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
	}
}

type viewDTO struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type issueDTO struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	ViewID      string    `json:"viewId"`
	ParentID    *string   `json:"parentId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toIssue(i *models.Issue) issueDTO {
	return issueDTO{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		ViewID:      i.ViewID,
		ParentID:    i.ParentID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    i.Priority,
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

type commentDTO struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issueId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type documentDTO struct {
	ID          string    `json:"id"`
	ContextType string    `json:"contextType"`
	ContextID   string    `json:"contextId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toDocument(d *models.Document) documentDTO {
	return documentDTO{
		ID:          d.ID,
		ContextType: string(d.Context.Type),
		ContextID:   d.Context.ID,
		FileName:    d.FileName,
		ContentType: d.ContentType,
		Size:        d.Size,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
	}
}

type linkDTO struct {
	ID          string    `json:"id"`
	ContextType string    `json:"contextType"`
	ContextID   string    `json:"contextId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toLink(l *models.Link) linkDTO {
	return linkDTO{
		ID:          l.ID,
		ContextType: string(l.Context.Type),
		ContextID:   l.Context.ID,
		Title:       l.Title,
		URL:         l.URL,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt,
	}
}

type messageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMessage(m *models.AIMessage) messageDTO {
	return messageDTO{ID: m.ID, Role: string(m.Role), Content: m.Content, CreatedAt: m.CreatedAt}
}

// mapAll converts a slice, always yielding a non-nil result so empty lists
// encode as [].
func mapAll[T, D any](in []*T, f func(*T) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
