package projects

import (
	"context"
	"net/http"

	projectsvc "github.com/dalemusser/projecthub/internal/app/services/projects"
	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleCreate creates a project owned by the caller.
//
// Route: POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	var in projectsvc.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, rep, err := h.Projects.Create(ctx, id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Incomplete(w, rep.Incomplete())
	respond.JSON(w, http.StatusCreated, p)
}

// HandleUpdate overwrites the editable fields of the caller's project.
//
// Route: PUT /projects/{project_id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in projectsvc.Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.Update(ctx, pid, id.UserID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// HandleDelete removes the caller's project.
//
// Route: DELETE /projects/{project_id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rep, err := h.Projects.Delete(ctx, pid, id.UserID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Incomplete(w, rep.Incomplete())
	respond.NoContent(w)
}

type statusRequest struct {
	Status            string `json:"status"`
	SelectedStudentID string `json:"selectedStudentId"`
}

// HandleStatus moves the project to a new status. Completing it publishes
// portfolio snapshots to every participating student.
//
// Route: PUT /projects/{project_id}/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}
	pid, err := shared.ParseID(chi.URLParam(r, "project_id"), "project")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var body statusRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, rep, err := h.Projects.UpdateStatus(ctx, pid, id.UserID, body.Status, body.SelectedStudentID)
	respond.Incomplete(w, rep.Incomplete())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
