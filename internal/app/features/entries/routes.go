// internal/app/features/entries/routes.go
package entries

import (
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
)

// Routes returns the entry router, meant to be mounted at
// /projects/{project_id}/entries.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authscope.RequireIdentity)

	r.With(authscope.RequireScope(h.Scopes.ManageEntry)).Post("/", h.HandleSignup)
	r.Get("/{user_id}", h.ServeGet)
	r.Post("/{user_id}/comments", h.HandleAddComment)
	r.Delete("/{user_id}/comments/{comment_id}", h.HandleDeleteComment)

	r.Group(func(pr chi.Router) {
		pr.Use(authscope.RequireScope(h.Scopes.ManageEntry))
		pr.Use(authscope.RequireSelf("user_id"))

		pr.Put("/{user_id}", h.HandleUpdate)
		pr.Delete("/{user_id}", h.HandleSignoff)
		pr.Post("/{user_id}/assets", h.HandleAddAsset)
		pr.Post("/{user_id}/assets/file", h.HandleAddAssetFile)
		pr.Delete("/{user_id}/assets/{asset_id}", h.HandleDeleteAsset)
	})
	return r
}
