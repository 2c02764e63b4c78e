package auditlog_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/dalemusser/projecthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.EntrySignup(ctx, "student-1", primitive.NewObjectID())
	logger.UserDeleted(ctx, "student-1")
}

func TestLogger_Destinations(t *testing.T) {
	tests := []struct {
		dest     string
		wantRows int
	}{
		{auditlog.DestAll, 1},
		{auditlog.DestDB, 1},
		{auditlog.DestLog, 0},
		{auditlog.DestOff, 0},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.NewNop(), tt.dest)
			logger.UserDeleted(ctx, "student-1")

			events, err := store.Query(ctx, audit.QueryFilter{ActorID: "student-1", Limit: 10})
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(events) != tt.wantRows {
				t.Errorf("expected %d events, got %d", tt.wantRows, len(events))
			}
		})
	}
}

func TestLogger_RequestInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.DestDB)
	pid := primitive.NewObjectID()

	h := auditlog.RequestInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.EntrySignup(r.Context(), "student-1", pid)
	}))
	req := httptest.NewRequest(http.MethodPost, "/projects/x/entries", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("User-Agent", "TestAgent/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := store.Query(ctx, audit.QueryFilter{ProjectID: &pid, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].IP != "203.0.113.7" || events[0].UserAgent != "TestAgent/1.0" {
		t.Errorf("request info not recorded: ip=%q ua=%q", events[0].IP, events[0].UserAgent)
	}
}

func TestLogger_WorkflowIncomplete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.DestDB)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	logger.WorkflowIncomplete(ctx, "liaison-1", "create_project", &pid, workflow.Report{Completed: []string{"insert_project"}})
	logger.WorkflowIncomplete(ctx, "liaison-1", "create_project", &pid, workflow.Report{
		Completed: []string{"insert_project"},
		Failed:    []workflow.Failure{{Step: "provision_storage", Err: errors.New("s3 down")}},
	})

	events, err := store.Query(ctx, audit.QueryFilter{ProjectID: &pid, Limit: 10})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the failing report to be logged, got %d", len(events))
	}
	if events[0].Success || events[0].Details["failed"] != "provision_storage" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestIsValidDestination(t *testing.T) {
	for _, d := range []string{"all", "db", "log", "off"} {
		if !auditlog.IsValidDestination(d) {
			t.Errorf("IsValidDestination(%q) = false", d)
		}
	}
	if auditlog.IsValidDestination("everything") {
		t.Error("IsValidDestination(everything) = true")
	}
}
