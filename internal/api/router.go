package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// siteRoot is the directory holding rendered pages; they are served
// read-only under /site/.
func NewRouter(svc *Service, authEnabled bool, token string, sseHandler http.Handler, siteRoot string) chi.Router {
	h := NewHandler(svc)
	sh := NewSiteHandler(siteRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Published pages.
	r.Get("/pages", h.ListPages)
	r.Get("/site/*", sh.ServeFile)

	// Source notes (read-only).
	r.Get("/notes/*", h.GetNote)

	// Search and link graph.
	r.Get("/search", h.Search)
	r.Get("/backlinks/{id}", h.Backlinks)

	// Publishing.
	r.Post("/publish", h.Publish)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
