package projects

import (
	"context"
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/filepayload"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleAddResource attaches a link or text resource.
//
// Route: POST /projects/{project_id}/resources
func (h *Handler) HandleAddResource(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in shared.AssetInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Projects.AddResource(ctx, pid, id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// HandleAddResourceFile uploads an inline file as a resource.
//
// Route: POST /projects/{project_id}/resources/file
func (h *Handler) HandleAddResourceFile(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var req filepayload.Request
	if err := respond.DecodeLimit(r, &req, h.MaxFileBody); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Projects.AddResourceFile(ctx, pid, id.UserID, req)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// HandleDeleteResource detaches a resource. Unknown ids are a no-op.
//
// Route: DELETE /projects/{project_id}/resources/{asset_id}
func (h *Handler) HandleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	aid, err := shared.ParseID(chi.URLParam(r, "asset_id"), "asset")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.DeleteResource(ctx, pid, id.UserID, aid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}

// HandleAddComment posts a comment on the project.
//
// Route: POST /projects/{project_id}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in shared.CommentInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Projects.AddComment(ctx, pid, id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

// HandleDeleteComment removes a comment (author or owning liaison only).
//
// Route: DELETE /projects/{project_id}/comments/{comment_id}
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	cid, err := shared.ParseID(chi.URLParam(r, "comment_id"), "comment")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Projects.DeleteComment(ctx, pid, id.UserID, cid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}
