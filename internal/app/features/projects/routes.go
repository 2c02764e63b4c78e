// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the project routes under the base path (typically
// "/projects"). entries, when non-nil, is mounted at
// /{project_id}/entries.
func Routes(h *Handler, entries chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(authscope.RequireIdentity)

	r.Get("/", h.ServeList)
	r.Get("/{project_id}", h.ServeGet)
	r.Post("/{project_id}/comments", h.HandleAddComment)
	r.Delete("/{project_id}/comments/{comment_id}", h.HandleDeleteComment)

	r.Group(func(pr chi.Router) {
		pr.Use(authscope.RequireScope(h.Scopes.ManageProject))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{project_id}", h.HandleUpdate)
		pr.Delete("/{project_id}", h.HandleDelete)
		pr.Put("/{project_id}/status", h.HandleStatus)

		pr.Post("/{project_id}/resources", h.HandleAddResource)
		pr.Post("/{project_id}/resources/file", h.HandleAddResourceFile)
		pr.Delete("/{project_id}/resources/{asset_id}", h.HandleDeleteResource)
	})

	if entries != nil {
		r.Mount("/{project_id}/entries", entries)
	}
	return r
}
