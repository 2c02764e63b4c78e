// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit history under the base path (typically "/audit").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authscope.RequireIdentity)
	r.Use(authscope.RequireScope(h.Scopes.ManageProject))

	r.Get("/", h.ServeList)

	return r
}
