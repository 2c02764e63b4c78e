package entries

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

// HandleAddAsset attaches a link or text asset to the caller's entry.
//
// Route: POST /projects/{project_id}/entries/{user_id}/assets
func (h *Handler) HandleAddAsset(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
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

	a, err := h.Entries.AddAsset(ctx, pid, chi.URLParam(r, "user_id"), in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// HandleAddAssetFile uploads an inline file to the caller's entry.
//
// Route: POST /projects/{project_id}/entries/{user_id}/assets/file
func (h *Handler) HandleAddAssetFile(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
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

	a, err := h.Entries.AddAssetFile(ctx, pid, chi.URLParam(r, "user_id"), req)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

// HandleDeleteAsset removes an asset. Unknown ids are a no-op.
//
// Route: DELETE /projects/{project_id}/entries/{user_id}/assets/{asset_id}
func (h *Handler) HandleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	pid, err := projectID(r)
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

	if err := h.Entries.DeleteAsset(ctx, pid, chi.URLParam(r, "user_id"), aid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}

// HandleAddComment posts feedback on an entry. Any authenticated caller
// may comment.
//
// Route: POST /projects/{project_id}/entries/{user_id}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := projectID(r)
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

	m, err := h.Entries.AddComment(ctx, pid, chi.URLParam(r, "user_id"), id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

// HandleDeleteComment removes an entry comment (author or owning liaison).
//
// Route: DELETE /projects/{project_id}/entries/{user_id}/comments/{comment_id}
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := projectID(r)
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

	if err := h.Entries.DeleteComment(ctx, pid, chi.URLParam(r, "user_id"), id.UserID, cid); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.NoContent(w)
}
