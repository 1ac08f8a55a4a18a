package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/go-chi/chi/v5"
)

type inviteRequest struct {
	Email string `json:"email"`
}

func (h *handlers) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Invitations.InviteCollaborator(r.Context(), chi.URLParam(r, "projectID"), req.Email, userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataMessage(w, http.StatusOK, toInvitation(res.Invitation), res.Message)
}

func (h *handlers) projectInvitations(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if _, _, err := h.Projects.Authorize(r.Context(), projectID, userFrom(r.Context()).ID, rbac.ActionRead); err != nil {
		writeError(w, err)
		return
	}
	list, err := h.Invitations.GetProjectInvitations(r.Context(), projectID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toInvitation))
}

func (h *handlers) myInvitations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Invitations.GetPendingInvitationsForEmail(r.Context(), userFrom(r.Context()).Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toInvitation))
}

func (h *handlers) getInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invitations.GetInvitationWithProject(r.Context(), chi.URLParam(r, "invitationID"))
	if err != nil {
		writeError(w, err)
		return
	}
	dto := toInvitation(&inv.Invitation)
	dto.ProjectName = inv.ProjectName
	dto.ProjectDescription = inv.ProjectDescription
	writeData(w, http.StatusOK, dto)
}

func (h *handlers) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	res, err := h.Invitations.AcceptInvitation(r.Context(), chi.URLParam(r, "invitationID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataMessage(w, http.StatusOK, toInvitation(res.Invitation), res.Message)
}

func (h *handlers) cancelInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.Invitations.CancelInvitation(r.Context(), chi.URLParam(r, "invitationID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}
