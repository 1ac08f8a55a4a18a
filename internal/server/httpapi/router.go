package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/slothapp/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type handlers struct {
	Deps
	logger logging.Logger
}

func NewRouter(d Deps, corsOrigin string, l logging.Logger) http.Handler {
	h := &handlers{Deps: d, logger: l.With("module", "http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(corsOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/nonce", h.issueNonce)
		r.Post("/auth/signup", h.signup)
		r.Post("/auth/login", h.login)
		r.Get("/auth/wallets/{address}", h.walletRegistered)

		r.Group(func(r chi.Router) {
			r.Use(requireSession(d.Auth))

			r.Post("/auth/logout", h.logout)
			r.Get("/auth/session", h.currentSession)

			r.Get("/me", h.me)
			r.Get("/me/api-key", h.apiKeyStatus)
			r.Put("/me/api-key", h.saveAPIKey)
			r.Delete("/me/api-key", h.removeAPIKey)
			r.Get("/me/invitations", h.myInvitations)

			if d.ChatProxy != nil {
				r.Method(http.MethodPost, "/chat", d.ChatProxy)
			}

			r.Get("/projects", h.listProjects)
			r.Post("/projects", h.createProject)
			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", h.getProject)
				r.Patch("/", h.updateProject)
				r.Delete("/", h.deleteProject)
				r.Get("/role", h.projectRole)
				r.Get("/collaborators", h.listCollaborators)
				r.Delete("/collaborators/{userID}", h.removeCollaborator)
				r.Get("/invitations", h.projectInvitations)
				r.Post("/invitations", h.invite)
				r.Get("/views", h.listViews)
				r.Post("/views", h.createView)
			})

			r.Delete("/views/{viewID}", h.deleteView)
			r.Get("/views/{viewID}/issues", h.listIssues)
			r.Post("/views/{viewID}/issues", h.createIssue)

			r.Get("/issues/{issueID}", h.getIssue)
			r.Patch("/issues/{issueID}", h.updateIssue)
			r.Delete("/issues/{issueID}", h.deleteIssue)
			r.Get("/issues/{issueID}/comments", h.listComments)
			r.Post("/issues/{issueID}/comments", h.addComment)

			r.Get("/invitations/{invitationID}", h.getInvitation)
			r.Post("/invitations/{invitationID}/accept", h.acceptInvitation)
			r.Delete("/invitations/{invitationID}", h.cancelInvitation)

			r.Route("/contexts/{contextType}/{contextID}", func(r chi.Router) {
				r.Get("/documents", h.listDocuments)
				r.Post("/documents", h.uploadDocument)
				r.Get("/links", h.listLinks)
				r.Post("/links", h.addLink)
				r.Get("/conversation", h.getConversation)
				r.Post("/conversation", h.chat)
				r.Delete("/conversation", h.clearConversation)
			})

			r.Get("/documents/{documentID}/download", h.downloadDocument)
			r.Delete("/documents/{documentID}", h.deleteDocument)
			r.Delete("/links/{linkID}", h.deleteLink)
		})
	})

	return r
}
