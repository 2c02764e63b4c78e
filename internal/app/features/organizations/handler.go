// internal/app/features/organizations/handler.go
package organizations

import (
	"net/http"

	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Organizations.
type Handler struct {
	Orgs   *orgsvc.Service
	Scopes authscope.Scopes
	Log    *zap.Logger
}

// NewHandler constructs a new Organizations handler.
func NewHandler(svc *orgsvc.Service, scopes authscope.Scopes, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:   svc,
		Scopes: scopes,
		Log:    logger,
	}
}

func orgID(r *http.Request) (primitive.ObjectID, error) {
	return shared.ParseID(chi.URLParam(r, "organization_id"), "organization")
}
