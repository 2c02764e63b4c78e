// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for audit events.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// IsValidDestination reports whether s names a known destination.
func IsValidDestination(s string) bool {
	switch s {
	case DestAll, DestDB, DestLog, DestOff:
		return true
	}
	return false
}

// Logger records domain audit events to MongoDB (via audit.Store) and/or
// structured logs (via zap). A nil *Logger is a no-op so services can be
// built without one in tests.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	dest   string
}

// New creates a new audit Logger. An empty destination means DestAll.
func New(store *audit.Store, zapLog *zap.Logger, destination string) *Logger {
	if destination == "" {
		destination = DestAll
	}
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, dest: destination}
}

type requestInfoKey struct{}

type requestInfo struct {
	ip, userAgent, requestID string
}

// RequestInfo is middleware that records the caller's IP, user agent and
// request id so events logged deeper in the call stack carry them.
func RequestInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := requestInfo{
			ip:        ratelimit.ClientIP(r),
			userAgent: r.UserAgent(),
			requestID: middleware.GetReqID(r.Context()),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))
	})
}

func infoFrom(ctx context.Context) requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(requestInfo)
	return info
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", event.ProjectID.Hex()))
	}
	if event.OrganizationID != nil {
		fields = append(fields, zap.String("organization_id", event.OrganizationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the configured destination.
// Storage failures are logged, never returned: auditing must not fail the
// operation being audited.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.dest == DestOff {
		return
	}

	info := infoFrom(ctx)
	if event.IP == "" {
		event.IP = info.ip
	}
	if event.UserAgent == "" {
		event.UserAgent = info.userAgent
	}
	if event.RequestID == "" {
		event.RequestID = info.requestID
	}

	if l.dest == DestAll || l.dest == DestLog {
		l.logToZap(event)
	}
	if (l.dest == DestAll || l.dest == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Project Events ---

// ProjectCreated logs a new project.
func (l *Logger) ProjectCreated(ctx context.Context, actorID string, projectID, orgID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryProject,
		EventType:      audit.EventProjectCreated,
		ActorID:        actorID,
		ProjectID:      &projectID,
		OrganizationID: &orgID,
		Success:        true,
		Details:        map[string]string{"title": title},
	})
}

// ProjectDeleted logs a project removal.
func (l *Logger) ProjectDeleted(ctx context.Context, actorID string, projectID, orgID primitive.ObjectID, title string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryProject,
		EventType:      audit.EventProjectDeleted,
		ActorID:        actorID,
		ProjectID:      &projectID,
		OrganizationID: &orgID,
		Success:        true,
		Details:        map[string]string{"title": title},
	})
}

// ProjectStatusChanged logs a status transition.
func (l *Logger) ProjectStatusChanged(ctx context.Context, actorID string, projectID primitive.ObjectID, from, to, selectedStudentID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryProject,
		EventType: audit.EventProjectStatusChanged,
		ActorID:   actorID,
		SubjectID: selectedStudentID,
		ProjectID: &projectID,
		Success:   true,
		Details:   map[string]string{"from": from, "to": to},
	})
}

// --- Entry Events ---

// EntrySignup logs a student joining a project.
func (l *Logger) EntrySignup(ctx context.Context, studentID string, projectID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryEntry,
		EventType: audit.EventEntrySignup,
		ActorID:   studentID,
		ProjectID: &projectID,
		Success:   true,
	})
}

// EntrySignoff logs a student leaving a project.
func (l *Logger) EntrySignoff(ctx context.Context, studentID string, projectID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryEntry,
		EventType: audit.EventEntrySignoff,
		ActorID:   studentID,
		ProjectID: &projectID,
		Success:   true,
	})
}

// --- Organization Events ---

// OrgCreated logs a new organization.
func (l *Logger) OrgCreated(ctx context.Context, actorID string, orgID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryOrganization,
		EventType:      audit.EventOrgCreated,
		ActorID:        actorID,
		OrganizationID: &orgID,
		Success:        true,
		Details:        map[string]string{"name": name},
	})
}

// OrgUpdated logs an organization edit.
func (l *Logger) OrgUpdated(ctx context.Context, actorID string, orgID primitive.ObjectID, fieldsChanged []string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryOrganization,
		EventType:      audit.EventOrgUpdated,
		ActorID:        actorID,
		OrganizationID: &orgID,
		Success:        true,
		Details:        map[string]string{"fields_changed": strings.Join(fieldsChanged, ",")},
	})
}

// LiaisonAdded logs a user becoming a liaison.
func (l *Logger) LiaisonAdded(ctx context.Context, actorID, userID string, orgID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryOrganization,
		EventType:      audit.EventLiaisonAdded,
		ActorID:        actorID,
		SubjectID:      userID,
		OrganizationID: &orgID,
		Success:        true,
	})
}

// LiaisonRemoved logs a user leaving the liaison set.
func (l *Logger) LiaisonRemoved(ctx context.Context, actorID, userID string, orgID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryOrganization,
		EventType:      audit.EventLiaisonRemoved,
		ActorID:        actorID,
		SubjectID:      userID,
		OrganizationID: &orgID,
		Success:        true,
	})
}

// --- User Events ---

// UserDeleted logs a self-service account deletion.
func (l *Logger) UserDeleted(ctx context.Context, userID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryUser,
		EventType: audit.EventUserDeleted,
		ActorID:   userID,
		SubjectID: userID,
		Success:   true,
	})
}

// --- Workflow Events ---

// WorkflowIncomplete logs a workflow whose report has failures.
func (l *Logger) WorkflowIncomplete(ctx context.Context, actorID, name string, projectID *primitive.ObjectID, rep workflow.Report) {
	if rep.OK() {
		return
	}
	reason := ""
	if err := rep.Err(); err != nil {
		reason = err.Error()
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryWorkflow,
		EventType:     audit.EventWorkflowIncomplete,
		ActorID:       actorID,
		ProjectID:     projectID,
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"workflow":    name,
			"completed":   strings.Join(rep.Completed, ","),
			"failed":      strings.Join(rep.Incomplete(), ","),
			"compensated": strings.Join(rep.Compensated, ","),
		},
	})
}
