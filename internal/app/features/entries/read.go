package entries

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeGet returns one student's entry. Students see their own; holders of
// the manage-project scope see any.
//
// Route: GET /projects/{project_id}/entries/{user_id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := projectID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	studentID := chi.URLParam(r, "user_id")
	if !authscope.Owns(id.UserID, studentID) && !id.Has(h.Scopes.ManageProject) {
		respond.Error(w, r, h.Log, apierr.Forbidden("You can only view your own entry"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Entries.GetByStudentID(ctx, pid, studentID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}
