package organizations

import (
	"context"
	"net/http"

	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

// HandleUpdate patches the organization. Absent fields are kept.
//
// Route: PUT /organizations/{organization_id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	id, err := orgID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in orgsvc.PatchInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.Update(ctx, id, caller.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, org)
}
