package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/dbx"
	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/repositories/repomanager"
)

const (
	msgInvitationSent     = "Invitation sent"
	msgInvitationPending  = "An invitation is already pending for this email"
	msgInvitationAccepted = "Invitation accepted"
	msgAlreadyMember      = "You already have access to this project"
)

// InviteResult carries the invitation and a message for the inviter.
type InviteResult struct {
	Invitation *models.Invitation
	Message    string
}

// AcceptResult carries the accepted invitation and a message for the invitee.
type AcceptResult struct {
	Invitation *models.Invitation
	Message    string
}

// InvitationService drives invitations through pending -> accepted or
// pending -> expired. Expiry is applied lazily whenever a row is read.
type InvitationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
	log         logging.Logger
	now         func() time.Time
}

// NewInvitationService constructs an InvitationService. A non-positive
// validity selects common.InvitationValidity.
func NewInvitationService(db *sql.DB, m repomanager.RepositoryManager, validity time.Duration, log logging.Logger) *InvitationService {
	if validity <= 0 {
		validity = common.InvitationValidity
	}
	return &InvitationService{
		db:          db,
		repomanager: m,
		validity:    validity,
		log:         log.With("module", "invitations"),
		now:         time.Now,
	}
}

// expireIfStale flips a pending row past its expiry. The row is updated in
// place; a failed flip is only logged.
func (s *InvitationService) expireIfStale(ctx context.Context, inv *models.Invitation) {
	if !inv.Stale(s.now()) {
		return
	}
	if err := s.repomanager.Invitations(s.db).MarkExpired(ctx, inv.ID); err != nil {
		s.log.Warn(ctx, "failed to mark invitation expired", "invitation_id", inv.ID, "error", err)
	}
	inv.Status = models.InvitationExpired
}

func (s *InvitationService) isMember(ctx context.Context, p *models.Project, userID string) (bool, error) {
	if p.OwnerID == userID {
		return true, nil
	}
	_, err := s.repomanager.Collaborators(s.db).Get(ctx, p.ID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	return false, err
}

// InviteCollaborator invites email to projectID on behalf of inviterID. An
// unexpired pending invitation for the same address is returned unchanged.
func (s *InvitationService) InviteCollaborator(ctx context.Context, projectID, email, inviterID string) (*InviteResult, error) {
	if !common.IsValidEmail(email) {
		return nil, common.ErrInvalidEmail
	}
	email = common.NormalizeEmail(email)

	project, err := s.repomanager.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load project", err, common.ErrProjectNotFound)
	}

	member, err := s.isMember(ctx, project, inviterID)
	if err != nil {
		return nil, unknown(ctx, s.log, "check inviter", err)
	}
	if !member {
		return nil, common.ErrUnauthorized
	}

	users := s.repomanager.Users(s.db)
	inviter, err := users.GetByID(ctx, inviterID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load inviter", err, common.ErrUserNotFound)
	}
	if inviter.Email == email {
		return nil, common.ErrSelfInvite
	}

	target, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		member, err := s.isMember(ctx, project, target.ID)
		if err != nil {
			return nil, unknown(ctx, s.log, "check invitee", err)
		}
		if member {
			return nil, common.ErrAlreadyCollaborator
		}
	case !errors.Is(err, common.ErrorNotFound):
		return nil, unknown(ctx, s.log, "load invitee", err)
	}

	invitations := s.repomanager.Invitations(s.db)
	existing, err := invitations.FindPending(ctx, projectID, email)
	switch {
	case err == nil:
		if !existing.Stale(s.now()) {
			return &InviteResult{Invitation: existing, Message: msgInvitationPending}, nil
		}
		if err := invitations.MarkExpired(ctx, existing.ID); err != nil {
			return nil, unknown(ctx, s.log, "expire invitation", err)
		}
	case !errors.Is(err, common.ErrorNotFound):
		return nil, unknown(ctx, s.log, "find pending invitation", err)
	}

	inv, err := invitations.Create(ctx, &models.Invitation{
		ID:        newID(),
		ProjectID: projectID,
		Email:     email,
		InvitedBy: inviterID,
		Status:    models.InvitationPending,
		ExpiresAt: s.now().Add(s.validity),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// a concurrent invite won the pending slot
			won, ferr := invitations.FindPending(ctx, projectID, email)
			if ferr == nil {
				return &InviteResult{Invitation: won, Message: msgInvitationPending}, nil
			}
			return nil, unknown(ctx, s.log, "find pending invitation", ferr)
		}
		return nil, unknown(ctx, s.log, "create invitation", err)
	}

	s.log.Info(ctx, "invitation created", "invitation_id", inv.ID, "project_id", projectID)
	return &InviteResult{Invitation: inv, Message: msgInvitationSent}, nil
}

// AcceptInvitation adds userID as an editor and marks the invitation accepted
// in one transaction. The user's email must match the invitation.
func (s *InvitationService) AcceptInvitation(ctx context.Context, invitationID, userID string) (*AcceptResult, error) {
	invitations := s.repomanager.Invitations(s.db)
	inv, err := invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load invitation", err, common.ErrInvitationNotFound)
	}

	if inv.Status == models.InvitationAccepted {
		return nil, common.ErrInvitationUsed
	}
	s.expireIfStale(ctx, inv)
	if inv.Status == models.InvitationExpired {
		return nil, common.ErrInvitationExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load user", err, common.ErrUserNotFound)
	}
	if common.NormalizeEmail(user.Email) != common.NormalizeEmail(inv.Email) {
		return nil, common.ErrUnauthorized
	}

	now := s.now()
	result := &AcceptResult{Invitation: inv, Message: msgInvitationAccepted}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := s.repomanager.Collaborators(tx).Add(ctx, &models.ProjectCollaborator{
			ProjectID:  inv.ProjectID,
			UserID:     userID,
			Role:       models.RoleEditor,
			InvitedAt:  inv.CreatedAt,
			AcceptedAt: &now,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			result.Message = msgAlreadyMember
		} else if err != nil {
			return err
		}
		return s.repomanager.Invitations(tx).MarkAccepted(ctx, inv.ID, now)
	})
	if errors.Is(err, common.ErrorNotFound) {
		// the row left pending between the read and the update
		return nil, s.acceptConflict(ctx, inv.ID)
	}
	if err != nil {
		return nil, unknown(ctx, s.log, "accept invitation", err)
	}

	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &now
	s.log.Info(ctx, "invitation accepted", "invitation_id", inv.ID, "user_id", userID)
	return result, nil
}

// acceptConflict re-reads an invitation whose accept update matched no
// pending row and reports the state it moved to.
func (s *InvitationService) acceptConflict(ctx context.Context, invitationID string) error {
	inv, err := s.repomanager.Invitations(s.db).GetByID(ctx, invitationID)
	if err != nil {
		return notFoundOr(ctx, s.log, "reload invitation", err, common.ErrInvitationNotFound)
	}
	switch {
	case inv.Status == models.InvitationAccepted:
		return common.ErrInvitationUsed
	case inv.Status == models.InvitationExpired, inv.Stale(s.now()):
		return common.ErrInvitationExpired
	default:
		return common.ErrInvitationNotFound
	}
}

// GetInvitation loads an invitation, flipping it to expired when stale.
func (s *InvitationService) GetInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	inv, err := s.repomanager.Invitations(s.db).GetByID(ctx, invitationID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load invitation", err, common.ErrInvitationNotFound)
	}
	s.expireIfStale(ctx, inv)
	return inv, nil
}

// GetInvitationWithProject is GetInvitation plus the project name.
func (s *InvitationService) GetInvitationWithProject(ctx context.Context, invitationID string) (*models.InvitationWithProject, error) {
	inv, err := s.repomanager.Invitations(s.db).GetWithProject(ctx, invitationID)
	if err != nil {
		return nil, notFoundOr(ctx, s.log, "load invitation", err, common.ErrInvitationNotFound)
	}
	s.expireIfStale(ctx, &inv.Invitation)
	return inv, nil
}

// GetPendingInvitationsForEmail returns only invitations still pending
// after stale rows are flipped.
func (s *InvitationService) GetPendingInvitationsForEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	list, err := s.repomanager.Invitations(s.db).ListPendingByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return nil, unknown(ctx, s.log, "list invitations", err)
	}
	out := make([]*models.Invitation, 0, len(list))
	for _, inv := range list {
		s.expireIfStale(ctx, inv)
		if inv.Status == models.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

// GetProjectInvitations lists every invitation of a project, newest first.
func (s *InvitationService) GetProjectInvitations(ctx context.Context, projectID string) ([]*models.Invitation, error) {
	list, err := s.repomanager.Invitations(s.db).ListByProject(ctx, projectID)
	if err != nil {
		return nil, unknown(ctx, s.log, "list invitations", err)
	}
	for _, inv := range list {
		s.expireIfStale(ctx, inv)
	}
	return list, nil
}

// CancelInvitation deletes an unaccepted invitation on behalf of any
// project member.
func (s *InvitationService) CancelInvitation(ctx context.Context, invitationID, requesterID string) error {
	invitations := s.repomanager.Invitations(s.db)
	inv, err := invitations.GetByID(ctx, invitationID)
	if err != nil {
		return notFoundOr(ctx, s.log, "load invitation", err, common.ErrInvitationNotFound)
	}
	if inv.Status == models.InvitationAccepted {
		return common.ErrInvitationUsed
	}

	project, err := s.repomanager.Projects(s.db).GetByID(ctx, inv.ProjectID)
	if err != nil {
		return notFoundOr(ctx, s.log, "load project", err, common.ErrProjectNotFound)
	}
	member, err := s.isMember(ctx, project, requesterID)
	if err != nil {
		return unknown(ctx, s.log, "check requester", err)
	}
	if !member {
		return common.ErrUnauthorized
	}
	if err := invitations.Delete(ctx, invitationID); err != nil {
		return notFoundOr(ctx, s.log, "delete invitation", err, common.ErrInvitationNotFound)
	}
	return nil
}
