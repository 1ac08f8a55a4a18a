package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type issueRequest struct {
	ParentID    *string `json:"parentId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
}

type issuePatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *int    `json:"priority"`
}

func (p issuePatchRequest) patch() models.IssuePatch {
	out := models.IssuePatch{Title: p.Title, Description: p.Description, Priority: p.Priority}
	if p.Status != nil {
		st := models.IssueStatus(*p.Status)
		out.Status = &st
	}
	return out
}

// listIssues accepts ?parent=<id> (or ?parent= for top-level only) and
// ?status=<status>.
func (h *handlers) listIssues(w http.ResponseWriter, r *http.Request) {
	filter := models.IssueFilter{ViewID: chi.URLParam(r, "viewID")}
	q := r.URL.Query()
	if q.Has("parent") {
		parent := q.Get("parent")
		filter.ParentID = &parent
	}
	if s := q.Get("status"); s != "" {
		st := models.IssueStatus(s)
		filter.Status = &st
	}

	list, err := h.WorkItems.ListIssues(r.Context(), userFrom(r.Context()).ID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toIssue))
}

func (h *handlers) createIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	issue, err := h.WorkItems.CreateIssue(r.Context(), userFrom(r.Context()).ID, services.IssueInput{
		ViewID:      chi.URLParam(r, "viewID"),
		ParentID:    req.ParentID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.IssueStatus(req.Status),
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toIssue(issue))
}

func (h *handlers) getIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := h.WorkItems.GetIssue(r.Context(), chi.URLParam(r, "issueID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toIssue(issue))
}

func (h *handlers) updateIssue(w http.ResponseWriter, r *http.Request) {
	var req issuePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	issue, err := h.WorkItems.UpdateIssue(r.Context(), chi.URLParam(r, "issueID"), userFrom(r.Context()).ID, req.patch())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toIssue(issue))
}

func (h *handlers) deleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := h.WorkItems.DeleteIssue(r.Context(), chi.URLParam(r, "issueID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type commentRequest struct {
	Body string `json:"body"`
}

func toComment(c *models.Comment) commentDTO {
	return commentDTO{ID: c.ID, IssueID: c.IssueID, AuthorID: c.AuthorID, Body: c.Body, CreatedAt: c.CreatedAt}
}

func (h *handlers) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := h.WorkItems.ListComments(r.Context(), chi.URLParam(r, "issueID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toComment))
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.WorkItems.AddComment(r.Context(), chi.URLParam(r, "issueID"), userFrom(r.Context()).ID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toComment(c))
}
