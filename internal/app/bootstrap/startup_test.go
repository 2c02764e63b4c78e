package bootstrap

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/projecthub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:              "mongodb://localhost:27017",
		MongoDatabase:         "projecthub_test",
		AuthMode:              authscope.ModeGateway,
		ScopeManageProject:    authscope.DefaultManageProject,
		ScopeManageEntry:      authscope.DefaultManageEntry,
		OrgUpdatePolicy:       "any",
		StorageType:           StorageMemory,
		StorageMaxUploadBytes: 1 << 20,
		AuditLog:              "off",
		RateLimitPerMinute:    60,
		RateLimitBurst:        10,
		FanOutLimit:           4,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		core    *config.CoreConfig
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, nil, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "http://nope" }, nil, true},
		{"jwt without secret", func(c *AppConfig) { c.AuthMode = authscope.ModeJWT }, nil, true},
		{"jwt with dev secret outside prod", func(c *AppConfig) { c.AuthMode = authscope.ModeJWT; c.AuthJWTSecret = devJWTSecret }, &config.CoreConfig{Env: "dev"}, false},
		{"jwt with dev secret in prod", func(c *AppConfig) { c.AuthMode = authscope.ModeJWT; c.AuthJWTSecret = devJWTSecret }, &config.CoreConfig{Env: "prod"}, true},
		{"unknown auth mode", func(c *AppConfig) { c.AuthMode = "cookie" }, nil, true},
		{"empty scope", func(c *AppConfig) { c.ScopeManageEntry = " " }, nil, true},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = StorageS3 }, nil, true},
		{"s3 half credentials", func(c *AppConfig) { c.StorageType = StorageS3; c.StorageS3Bucket = "b"; c.StorageS3AccessKey = "k" }, nil, true},
		{"s3 ok", func(c *AppConfig) { c.StorageType = StorageS3; c.StorageS3Bucket = "b" }, nil, false},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "disk" }, nil, true},
		{"zero upload limit", func(c *AppConfig) { c.StorageMaxUploadBytes = 0 }, nil, true},
		{"unknown policy", func(c *AppConfig) { c.OrgUpdatePolicy = "admins" }, nil, true},
		{"unknown audit destination", func(c *AppConfig) { c.AuditLog = "file" }, nil, true},
		{"negative retention", func(c *AppConfig) { c.AuditRetention = -time.Hour }, nil, true},
		{"negative rate limit", func(c *AppConfig) { c.RateLimitPerMinute = -1 }, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartup_ConfiguresTimeouts(t *testing.T) {
	defer timeouts.Reset()

	cfg := validConfig()
	cfg.TimeoutShort = 3 * time.Second
	if err := Startup(t.Context(), nil, cfg, DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if got := timeouts.Short(); got != 3*time.Second {
		t.Errorf("Short() = %v, want 3s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("Medium() = %v, want default", got)
	}
}

func newTestRouter(t *testing.T, cfg AppConfig) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	authn, err := authscope.NewAuthenticator(cfg.authConfig())
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}
	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Objects:       objectstore.NewMemory(""),
		Audit:         audit.New(db),
	}
	if cfg.RateLimitPerMinute > 0 {
		deps.Limiter = ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
		t.Cleanup(deps.Limiter.Close)
	}
	return newRouter(cfg, deps, authn, testLogger()), testutil.NewFixtures(t, db)
}

// newOfflineRouter builds the full router on a client that never dials, for
// routing behavior that must not touch the database.
func newOfflineRouter(t *testing.T, cfg AppConfig) http.Handler {
	t.Helper()
	client, err := mongo.Connect(t.Context(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("mongo.Connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	authn, err := authscope.NewAuthenticator(cfg.authConfig())
	if err != nil {
		t.Fatalf("NewAuthenticator failed: %v", err)
	}
	db := client.Database(cfg.MongoDatabase)
	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Objects:       objectstore.NewMemory(""),
		Audit:         audit.New(db),
	}
	return newRouter(cfg, deps, authn, testLogger())
}

func TestRouter_PreflightWithoutCredentials(t *testing.T) {
	router := newOfflineRouter(t, validConfig())
	id := "64b7f0c2a1b2c3d4e5f60718"

	for _, path := range []string{
		"/projects",
		"/projects/" + id,
		"/projects/" + id + "/status",
		"/projects/" + id + "/entries",
		"/projects/" + id + "/entries/u1/assets/file",
		"/organizations",
		"/organizations/" + id + "/liaisons/u1",
		"/users/u1",
		"/audit",
		"/nope",
	} {
		t.Run(path, func(t *testing.T) {
			req := testutil.NewRequest(http.MethodOptions, path)
			req.Header.Set("Origin", "https://app.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)

			rec.AssertStatus(t, http.StatusNoContent)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q", got)
			}
			if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
				t.Error("Access-Control-Allow-Headers not set")
			}
		})
	}
}

func TestRouter_AnonymousStillUnauthorized(t *testing.T) {
	router := newOfflineRouter(t, validConfig())
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodPost, "/projects"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func gatewayRequest(r *http.Request, userID string, scopes string) *http.Request {
	r.Header.Set(authscope.HeaderPrincipal, testutil.Principal(userID))
	r.Header.Set(authscope.HeaderScope, scopes)
	return r
}

func TestRouter_Endpoints(t *testing.T) {
	router, fx := newTestRouter(t, validConfig())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fx.CreateMarketplace(ctx, 1)
	p := fx.CreateProject(ctx, "Logo", m.Liaison.ID, m.Org.ID)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"health", testutil.NewRequest(http.MethodGet, "/health"), http.StatusOK},
		{"metrics", testutil.NewRequest(http.MethodGet, "/metrics"), http.StatusOK},
		{"preflight", testutil.NewRequest(http.MethodOptions, "/projects"), http.StatusNoContent},
		{"anonymous projects", testutil.NewRequest(http.MethodGet, "/projects"), http.StatusUnauthorized},
		{"projects", gatewayRequest(testutil.NewRequest(http.MethodGet, "/projects"), "student-1", ""), http.StatusOK},
		{"project", gatewayRequest(testutil.NewRequest(http.MethodGet, "/projects/"+p.ID.Hex()), "student-1", ""), http.StatusOK},
		{"entry signup", gatewayRequest(testutil.NewRequest(http.MethodPost, "/projects/"+p.ID.Hex()+"/entries"), "student-1", authscope.DefaultManageEntry), http.StatusCreated},
		{"entry get", gatewayRequest(testutil.NewRequest(http.MethodGet, "/projects/"+p.ID.Hex()+"/entries/student-1"), "student-1", ""), http.StatusOK},
		{"organizations", gatewayRequest(testutil.NewRequest(http.MethodGet, "/organizations"), "student-1", ""), http.StatusOK},
		{"user", gatewayRequest(testutil.NewRequest(http.MethodGet, "/users/student-1"), "student-1", ""), http.StatusOK},
		{"unknown route", gatewayRequest(testutil.NewRequest(http.MethodGet, "/nope"), "student-1", ""), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, tt.req)
			rec.AssertStatus(t, tt.status)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" && tt.name != "metrics" {
				t.Errorf("Access-Control-Allow-Origin = %q", got)
			}
		})
	}
}

func TestRouter_SignupThenComplete(t *testing.T) {
	router, fx := newTestRouter(t, validConfig())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m := fx.CreateMarketplace(ctx, 1)
	p := fx.CreateProject(ctx, "Logo", m.Liaison.ID, m.Org.ID)
	base := "/projects/" + p.ID.Hex()

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, gatewayRequest(testutil.NewRequest(http.MethodPost, base+"/entries"), "student-1", authscope.DefaultManageEntry))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	req := testutil.NewJSONRequest(t, http.MethodPut, base+"/status", map[string]string{
		"status":            models.ProjectComplete,
		"selectedStudentId": "student-1",
	})
	router.ServeHTTP(rec, gatewayRequest(req, m.Liaison.ID, authscope.DefaultManageProject))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, gatewayRequest(testutil.NewRequest(http.MethodGet, "/users/student-1"), "student-1", ""))
	rec.AssertStatus(t, http.StatusOK)
	var u struct {
		PortfolioEntries []models.PortfolioEntry `json:"portfolioEntries"`
	}
	rec.Decode(t, &u)
	if len(u.PortfolioEntries) != 1 || !u.PortfolioEntries[0].Selected {
		t.Errorf("portfolio = %+v", u.PortfolioEntries)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitPerMinute = 1
	cfg.RateLimitBurst = 1
	router, _ := newTestRouter(t, cfg)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, gatewayRequest(testutil.NewRequest(http.MethodGet, "/organizations"), "student-1", ""))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 429]", codes)
	}
}
