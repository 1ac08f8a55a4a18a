package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/rbac"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.Projects.ListProjects(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toProject))
}

func (h *handlers) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Projects.CreateProject(r.Context(), userFrom(r.Context()).ID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toProject(p))
}

func (h *handlers) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Projects.GetProject(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProject(p))
}

func (h *handlers) updateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Projects.UpdateProject(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toProject(p))
}

func (h *handlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Projects.DeleteProject(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func (h *handlers) projectRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.Projects.RoleFor(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	perms := map[string]bool{}
	for _, a := range []rbac.Action{rbac.ActionRead, rbac.ActionWrite, rbac.ActionInvite, rbac.ActionAdmin} {
		perms[string(a)] = rbac.Can(role, a)
	}
	writeData(w, http.StatusOK, map[string]any{"role": role, "permissions": perms})
}

func (h *handlers) listCollaborators(w http.ResponseWriter, r *http.Request) {
	list, err := h.Projects.ListCollaborators(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, func(c *models.ProjectCollaborator) collaboratorDTO {
		return collaboratorDTO{UserID: c.UserID, Role: string(c.Role), InvitedAt: c.InvitedAt, AcceptedAt: c.AcceptedAt}
	}))
}

func (h *handlers) removeCollaborator(w http.ResponseWriter, r *http.Request) {
	err := h.Projects.RemoveCollaborator(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID, chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type viewRequest struct {
	Name string `json:"name"`
}

func toView(v *models.View) viewDTO {
	return viewDTO{ID: v.ID, ProjectID: v.ProjectID, Name: v.Name, CreatedAt: v.CreatedAt}
}

func (h *handlers) listViews(w http.ResponseWriter, r *http.Request) {
	list, err := h.Projects.ListViews(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toView))
}

func (h *handlers) createView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.Projects.CreateView(r.Context(), chi.URLParam(r, "projectID"), userFrom(r.Context()).ID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toView(v))
}

func (h *handlers) deleteView(w http.ResponseWriter, r *http.Request) {
	if err := h.Projects.DeleteView(r.Context(), chi.URLParam(r, "viewID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}
