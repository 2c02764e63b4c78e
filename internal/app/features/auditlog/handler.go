// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	organizationstore "github.com/dalemusser/projecthub/internal/app/store/organizations"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit history. It reads the stores directly; nothing
// here writes.
type Handler struct {
	Events   *audit.Store
	Projects *projectstore.Store
	Users    *userstore.Store
	Orgs     *organizationstore.Store
	Scopes   authscope.Scopes
	Log      *zap.Logger
}

// NewHandler constructs a new audit history handler.
func NewHandler(db *mongo.Database, scopes authscope.Scopes, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   audit.New(db),
		Projects: projectstore.New(db),
		Users:    userstore.New(db),
		Orgs:     organizationstore.New(db),
		Scopes:   scopes,
		Log:      logger,
	}
}
