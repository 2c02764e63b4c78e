// internal/app/features/entries/handler.go
package entries

import (
	"net/http"

	entrysvc "github.com/dalemusser/projecthub/internal/app/services/entries"
	"github.com/dalemusser/projecthub/internal/app/services/shared"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/filepayload"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves a project's entries. It is mounted below a project, so
// every route sees {project_id}.
type Handler struct {
	Entries     *entrysvc.Service
	Scopes      authscope.Scopes
	MaxFileBody int64
	Log         *zap.Logger
}

func NewHandler(svc *entrysvc.Service, scopes authscope.Scopes, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		Entries:     svc,
		Scopes:      scopes,
		MaxFileBody: filepayload.BodyLimit(maxUploadBytes),
		Log:         logger,
	}
}

func projectID(r *http.Request) (primitive.ObjectID, error) {
	return shared.ParseID(chi.URLParam(r, "project_id"), "project")
}
