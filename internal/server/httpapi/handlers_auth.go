package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type signupRequest struct {
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Nonce         string `json:"nonce"`
}

type loginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Nonce         string `json:"nonce"`
}

type authResponse struct {
	User    userDTO    `json:"user"`
	Session sessionDTO `json:"session"`
	Token   string     `json:"token"`
}

func toAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{User: toUser(res.User), Session: toSession(res.Session), Token: res.Token}
}

func (h *handlers) issueNonce(w http.ResponseWriter, r *http.Request) {
	ch, err := h.Auth.IssueNonce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"nonce":     ch.Nonce,
		"message":   ch.Message,
		"expiresAt": ch.ExpiresAt,
	})
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.Signup(r.Context(), services.SignupInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toAuthResponse(res))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.Auth.LoginWithWallet(r.Context(), services.LoginInput(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toAuthResponse(res))
}

func (h *handlers) walletRegistered(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Auth.IsWalletRegistered(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"registered": ok})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	_ = h.Auth.Logout(r.Context(), tokenFrom(r.Context()))
	writeOK(w)
}

func (h *handlers) currentSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.GetCurrentSession(r.Context(), tokenFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"session": toSession(sess),
		"user":    toUser(userFrom(r.Context())),
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, toUser(userFrom(r.Context())))
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func (h *handlers) apiKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.APIKeys.GetUserAPIKeyStatus(r.Context(), userFrom(r.Context()).ID))
}

func (h *handlers) saveAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.APIKeys.SaveUserAPIKey(r.Context(), userFrom(r.Context()).ID, req.APIKey); err != nil {
		writeError(w, err)
		return
	}
	writeDataMessage(w, http.StatusOK, services.APIKeyStatus{HasAPIKey: true}, "API key saved")
}

func (h *handlers) removeAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.APIKeys.RemoveUserAPIKey(r.Context(), userFrom(r.Context()).ID); err != nil {
		writeError(w, err)
		return
	}
	writeDataMessage(w, http.StatusOK, services.APIKeyStatus{HasAPIKey: false}, "API key removed")
}
