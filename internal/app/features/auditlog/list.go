// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/apierr"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeList returns audit events, newest first, fifty per page.
//
// Without ?project_id= the caller sees the events they performed. With it,
// the caller must own the project and sees everything recorded against it.
// Optional filters: category, event_type, start_date and end_date
// (YYYY-MM-DD, end date inclusive), page.
//
// Route: GET /audit
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authscope.Caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	if !validCategory(category) {
		respond.Error(w, r, h.Log, apierr.Invalid("Unknown category"))
		return
	}
	if eventType != "" && !slices.Contains(eventTypesForCategory(category), eventType) {
		respond.Error(w, r, h.Log, apierr.Invalid("Unknown event type"))
		return
	}

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	if page > math.MaxInt/pageSize {
		respond.Error(w, r, h.Log, apierr.Invalid("Page is too large"))
		return
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.Invalid("start_date must be YYYY-MM-DD"))
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.Invalid("end_date must be YYYY-MM-DD"))
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit history")
	defer cancel()

	if raw := q.Get("project_id"); raw != "" {
		pid, err := shared.ParseID(raw, "project")
		if err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		p, err := h.Projects.GetByID(ctx, pid)
		if err != nil {
			respond.Error(w, r, h.Log, apierr.From(err, "Project not found"))
			return
		}
		if !authscope.Owns(id.UserID, p.LiaisonID) {
			respond.Error(w, r, h.Log, apierr.Forbidden("You can only view history for your own projects"))
			return
		}
		filter.ProjectID = &pid
	} else {
		filter.ActorID = id.UserID
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, apierr.From(err, ""))
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		respond.Error(w, r, h.Log, apierr.From(err, ""))
		return
	}

	respond.JSON(w, http.StatusOK, listResponse{
		Items:      h.items(ctx, events),
		Total:      total,
		Page:       page,
		TotalPages: int((total + pageSize - 1) / pageSize),
	})
}

// items resolves actor and organization names. Lookup failures only cost
// the names, so they are logged and the ids are still returned.
func (h *Handler) items(ctx context.Context, events []audit.Event) []eventItem {
	actorIDs := make([]string, 0, len(events))
	orgIDs := make([]primitive.ObjectID, 0, len(events))
	for _, e := range events {
		actorIDs = append(actorIDs, e.ActorID)
		if e.OrganizationID != nil {
			orgIDs = append(orgIDs, *e.OrganizationID)
		}
	}

	actors, err := h.Users.Summaries(ctx, actorIDs)
	if err != nil {
		h.Log.Warn("audit history: actor lookup failed", zap.Error(err))
	}
	orgNames, err := h.Orgs.Names(ctx, orgIDs)
	if err != nil {
		h.Log.Warn("audit history: organization lookup failed", zap.Error(err))
	}

	out := make([]eventItem, 0, len(events))
	for _, e := range events {
		item := eventItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorID:       e.ActorID,
			ActorName:     actors[e.ActorID].Name,
			SubjectID:     e.SubjectID,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ProjectID != nil {
			item.ProjectID = e.ProjectID.Hex()
		}
		if e.OrganizationID != nil {
			item.OrganizationID = e.OrganizationID.Hex()
			item.OrganizationName = orgNames[*e.OrganizationID]
		}
		out = append(out, item)
	}
	return out
}
