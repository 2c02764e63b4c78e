// internal/app/features/projects/handler.go
package projects

import (
	projectsvc "github.com/dalemusser/projecthub/internal/app/services/projects"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/projecthub/internal/app/system/filepayload"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Projects.
type Handler struct {
	Projects *projectsvc.Service
	Scopes   authscope.Scopes
	// MaxFileBody bounds the JSON body of inline file uploads.
	MaxFileBody int64
	Log         *zap.Logger
}

// NewHandler constructs a Projects handler.
func NewHandler(svc *projectsvc.Service, scopes authscope.Scopes, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		Projects:    svc,
		Scopes:      scopes,
		MaxFileBody: filepayload.BodyLimit(maxUploadBytes),
		Log:         logger,
	}
}
