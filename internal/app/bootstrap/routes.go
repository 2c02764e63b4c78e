// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/projecthub/internal/app/features/auditlog"
	entriesfeature "github.com/dalemusser/projecthub/internal/app/features/entries"
	healthfeature "github.com/dalemusser/projecthub/internal/app/features/health"
	organizationsfeature "github.com/dalemusser/projecthub/internal/app/features/organizations"
	projectsfeature "github.com/dalemusser/projecthub/internal/app/features/projects"
	usersfeature "github.com/dalemusser/projecthub/internal/app/features/users"
	entrysvc "github.com/dalemusser/projecthub/internal/app/services/entries"
	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	projectsvc "github.com/dalemusser/projecthub/internal/app/services/projects"
	usersvc "github.com/dalemusser/projecthub/internal/app/services/users"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/respond"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// ProjectHub builds the authenticator and the domain services, applies the
// global middleware (request ids, panic recovery, metrics, audit request
// info, authentication, rate limiting) and mounts the feature routers:
// projects (with entries nested below), organizations, users and the
// audit history.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	authn, err := authscope.NewAuthenticator(appCfg.authConfig())
	if err != nil {
		logger.Error("authenticator init failed", zap.Error(err))
		return nil, err
	}
	logger.Info("authentication configured", zap.String("mode", authn.Mode()))
	return newRouter(appCfg, deps, authn, logger), nil
}

func newRouter(appCfg AppConfig, deps DBDeps, authn *authscope.Authenticator, logger *zap.Logger) chi.Router {
	db := deps.MongoDatabase
	audit := auditlog.New(deps.Audit, logger, appCfg.AuditLog)
	scopes := appCfg.scopes()

	projects := projectsvc.New(db, deps.Objects, audit, logger, projectsvc.Config{
		MaxUploadBytes: appCfg.StorageMaxUploadBytes,
		FanOutLimit:    appCfg.FanOutLimit,
	})
	entries := entrysvc.New(db, deps.Objects, audit, logger, appCfg.StorageMaxUploadBytes)
	orgs := orgsvc.New(db, audit, logger, appCfg.OrgUpdatePolicy)
	users := usersvc.New(db, audit, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(auditlog.RequestInfo)
	r.Use(respond.AnswerPreflight)
	r.Use(authscope.Middleware(authn, logger))
	if deps.Limiter != nil {
		r.Use(ratelimit.Middleware(deps.Limiter, logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.StorageType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Projects, with a student's entries nested below each project
	entriesHandler := entriesfeature.NewHandler(entries, scopes, appCfg.StorageMaxUploadBytes, logger)
	projectsHandler := projectsfeature.NewHandler(projects, scopes, appCfg.StorageMaxUploadBytes, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler, entriesfeature.Routes(entriesHandler)))

	orgHandler := organizationsfeature.NewHandler(orgs, scopes, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler))

	usersHandler := usersfeature.NewHandler(users, scopes, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	auditHandler := auditlogfeature.NewHandler(db, scopes, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r
}
