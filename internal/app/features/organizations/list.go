package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
)

// ServeList returns organizations, optionally filtered by ?name= (prefix)
// and ?domain=.
//
// Route: GET /organizations
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := map[string]string{
		"name":   q.Get("name"),
		"domain": q.Get("domain"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	orgs, err := h.Orgs.List(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, orgs)
}

// ServeGet returns one organization with its liaisons' display fields.
//
// Route: GET /organizations/{organization_id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := orgID(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.Get(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, org)
}
