package organizations

import (
	"context"
	"net/http"

	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

// HandleCreate creates an organization with the caller as its first
// liaison.
//
// Route: POST /organizations
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	var in orgsvc.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, rep, err := h.Orgs.Create(ctx, id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Incomplete(w, rep.Incomplete())
	respond.JSON(w, http.StatusCreated, org)
}
