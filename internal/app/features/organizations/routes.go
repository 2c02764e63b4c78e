// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Organization routes under the base path
// (typically "/organizations" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authscope.RequireIdentity)

	r.Get("/", h.ServeList)
	r.Get("/{organization_id}", h.ServeGet)

	// Writes need manage-project; the update policy is checked by the service.
	r.Group(func(pr chi.Router) {
		pr.Use(authscope.RequireScope(h.Scopes.ManageProject))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{organization_id}", h.HandleUpdate)
		pr.Put("/{organization_id}/liaisons/{user_id}", h.HandleAddLiaison)
		pr.Delete("/{organization_id}/liaisons/{user_id}", h.HandleRemoveLiaison)
	})

	return r
}
