package entries

import (
	"context"
	"net/http"

	entrysvc "github.com/dalemusser/projecthub/internal/app/services/entries"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleSignup signs the caller up for the project.
//
// Route: POST /projects/{project_id}/entries
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := projectID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, rep, err := h.Entries.Signup(ctx, pid, id.UserID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Incomplete(w, rep.Incomplete())
	respond.JSON(w, http.StatusCreated, e)
}

// HandleUpdate changes the caller's commentary or status.
//
// Route: PUT /projects/{project_id}/entries/{user_id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in entrysvc.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Entries.Update(ctx, pid, chi.URLParam(r, "user_id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, e)
}

// HandleSignoff withdraws the caller's entry.
//
// Route: DELETE /projects/{project_id}/entries/{user_id}
func (h *Handler) HandleSignoff(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rep, err := h.Entries.Signoff(ctx, pid, chi.URLParam(r, "user_id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Incomplete(w, rep.Incomplete())
	respond.NoContent(w)
}
