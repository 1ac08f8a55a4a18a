package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/common"
	"github.com/dmitrijs2005/slothapp/internal/server/models"
	"github.com/dmitrijs2005/slothapp/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 25 << 20

func contextRef(w http.ResponseWriter, r *http.Request) (models.ContextRef, bool) {
	ct, err := models.ParseContextType(chi.URLParam(r, "contextType"))
	if err != nil {
		writeError(w, common.Invalid("Unknown context type").Wrap(err))
		return models.ContextRef{}, false
	}
	return models.ContextRef{Type: ct, ID: chi.URLParam(r, "contextID")}, true
}

func (h *handlers) listDocuments(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	list, err := h.Documents.ListDocuments(r.Context(), userFrom(r.Context()).ID, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toDocument))
}

// uploadDocument expects multipart/form-data with the content in "file".
func (h *handlers) uploadDocument(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.Invalid("A file is required").Wrap(err))
		return
	}
	defer file.Close()

	doc, err := h.Documents.Upload(r.Context(), userFrom(r.Context()).ID, services.UploadInput{
		Context:     ref,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toDocument(doc))
}

func (h *handlers) downloadDocument(w http.ResponseWriter, r *http.Request) {
	link, err := h.Documents.DownloadURL(r.Context(), chi.URLParam(r, "documentID"), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, link)
}

func (h *handlers) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.DeleteDocument(r.Context(), chi.URLParam(r, "documentID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type linkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (h *handlers) listLinks(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	list, err := h.Documents.ListLinks(r.Context(), userFrom(r.Context()).ID, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toLink))
}

func (h *handlers) addLink(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.Documents.AddLink(r.Context(), userFrom(r.Context()).ID, ref, req.Title, req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toLink(l))
}

func (h *handlers) deleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.Documents.DeleteLink(r.Context(), chi.URLParam(r, "linkID"), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

type chatRequest struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

func (h *handlers) getConversation(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	list, err := h.AI.GetConversation(r.Context(), userFrom(r.Context()).ID, ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, mapAll(list, toMessage))
}

func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.AI.Chat(r.Context(), userFrom(r.Context()).ID, ref, req.Content, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"conversationId": res.ConversationID,
		"reply":          toMessage(res.Reply),
	})
}

func (h *handlers) clearConversation(w http.ResponseWriter, r *http.Request) {
	ref, ok := contextRef(w, r)
	if !ok {
		return
	}
	if err := h.AI.ClearConversation(r.Context(), userFrom(r.Context()).ID, ref); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}
