package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeList returns projects, optionally filtered by ?status=.
//
// Route: GET /projects
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := map[string]string{"status": r.URL.Query().Get("status")}
	list, err := h.Projects.List(ctx, filter, id.Has(h.Scopes.ManageProject))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeGet returns one project. Entry details are only revealed to callers
// holding the manage-project scope.
//
// Route: GET /projects/{project_id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Get(ctx, pid, id.Has(h.Scopes.ManageProject))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
