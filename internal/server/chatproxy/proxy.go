// Package chatproxy forwards chat completion requests to the upstream API
// with the server-held key, so the key never reaches the browser.
package chatproxy

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/dmitrijs2005/slothapp/internal/server/completion"
)

const maxBodyBytes = 1 << 20

// ErrorBody is returned for every failure the proxy reports itself.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type Handler struct {
	upstream     string
	apiKey       string
	defaultModel string
	client       *http.Client
	logger       logging.Logger
}

func New(upstream, apiKey, defaultModel string, client *http.Client, l logging.Logger) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Handler{
		upstream:     upstream,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		client:       client,
		logger:       l.With("module", "chatproxy"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.apiKey == "" {
		h.logger.Error(ctx, "chat api key is not configured")
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "Chat API key is not configured"})
		return
	}

	var req completion.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body", Details: "messages must not be empty"})
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	payload, err := json.Marshal(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "Invalid request body", Details: err.Error()})
		return
	}

	upReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.upstream, bytes.NewReader(payload))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "Failed to build upstream request", Details: err.Error()})
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(upReq)
	if err != nil {
		h.logger.Warn(ctx, "chat upstream unreachable", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorBody{
			Error:   "Failed to reach chat API",
			Details: err.Error(),
			Status:  http.StatusBadGateway,
		})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, ErrorBody{
			Error:   "Failed to read chat API response",
			Details: err.Error(),
			Status:  http.StatusBadGateway,
		})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		h.logger.Warn(ctx, "chat upstream error", "status", resp.StatusCode)
		writeJSON(w, resp.StatusCode, ErrorBody{
			Error:   "Chat API request failed",
			Details: string(body),
			Status:  resp.StatusCode,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)
}
