package users

import (
	"context"
	"net/http"

	usersvc "github.com/dalemusser/projecthub/internal/app/services/users"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeGet returns the user with their projects and organization. Entry
// details in those projects are only revealed to manage-project holders.
//
// Route: GET /users/{user_id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	d, err := h.Users.Get(ctx, chi.URLParam(r, "user_id"), id.Has(h.Scopes.ManageProject))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}

// HandleUpsert creates or updates the caller's own profile.
//
// Route: PUT /users/{user_id}
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var in usersvc.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.CreateOrUpdate(ctx, chi.URLParam(r, "user_id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// HandleDelete removes the caller's user record.
//
// Route: DELETE /users/{user_id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Delete(ctx, chi.URLParam(r, "user_id")); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}

// HandlePortfolio replaces the caller's portfolio entries.
//
// Route: PUT /users/{user_id}/portfolio
func (h *Handler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	var in usersvc.PortfolioInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.UpdatePortfolioEntries(ctx, chi.URLParam(r, "user_id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}
