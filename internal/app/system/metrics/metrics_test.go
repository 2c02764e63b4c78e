package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.Get("/projects/{project_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	body := scrape(t)
	assert.Contains(t, body, `projecthub_http_requests_total{method="GET",route="/projects/{project_id}",status="418"}`)
}

func TestObserveReport(t *testing.T) {
	metrics.ObserveReport("create_project", workflow.Report{
		Completed: []string{"insert_project"},
		Failed:    []workflow.Failure{{Step: "provision_storage", Err: errors.New("down")}},
	})

	body := scrape(t)
	assert.Contains(t, body, `projecthub_workflow_steps_total{outcome="completed",step="insert_project",workflow="create_project"} 1`)
	assert.Contains(t, body, `projecthub_workflow_steps_total{outcome="failed",step="provision_storage",workflow="create_project"} 1`)
}

func TestObserveReport_CollapsesPerItemSteps(t *testing.T) {
	rep := workflow.Report{
		Failed: []workflow.Failure{{Step: "portfolio:student-x", Err: errors.New("down")}},
	}
	for i := 0; i < 50; i++ {
		rep.Completed = append(rep.Completed, fmt.Sprintf("portfolio:student-%d", i))
	}
	rep.Compensated = []string{"portfolio:student-0"}
	metrics.ObserveReport("fanout_labels", rep)

	body := scrape(t)
	assert.Contains(t, body, `projecthub_workflow_steps_total{outcome="completed",step="portfolio",workflow="fanout_labels"} 50`)
	assert.Contains(t, body, `projecthub_workflow_steps_total{outcome="failed",step="portfolio",workflow="fanout_labels"} 1`)
	assert.Contains(t, body, `projecthub_workflow_steps_total{outcome="compensated",step="portfolio",workflow="fanout_labels"} 1`)
	assert.NotContains(t, body, "student-")
}
