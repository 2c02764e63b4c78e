package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleAddLiaison adds {user_id} to the organization's liaisons.
//
// Route: PUT /organizations/{organization_id}/liaisons/{user_id}
func (h *Handler) HandleAddLiaison(w http.ResponseWriter, r *http.Request) {
	caller, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	id, err := orgID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.AddLiaison(ctx, id, caller.UserID, chi.URLParam(r, "user_id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, org)
}

// HandleRemoveLiaison removes {user_id} from the organization's liaisons.
//
// Route: DELETE /organizations/{organization_id}/liaisons/{user_id}
func (h *Handler) HandleRemoveLiaison(w http.ResponseWriter, r *http.Request) {
	caller, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	id, err := orgID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.RemoveLiaison(ctx, id, caller.UserID, chi.URLParam(r, "user_id"))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, org)
}
