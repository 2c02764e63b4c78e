// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user routes under the base path (typically "/users").
// Anyone signed in can read a profile; only the user may change it.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authscope.RequireIdentity)

	r.Get("/{user_id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(authscope.RequireSelf("user_id"))

		pr.Put("/{user_id}", h.HandleUpsert)
		pr.Delete("/{user_id}", h.HandleDelete)
		pr.Put("/{user_id}/portfolio", h.HandlePortfolio)
	})
	return r
}
