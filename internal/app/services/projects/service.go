// Package projectsvc implements the project workflows: listing and
// reading with populated references, owner-only mutations, the status
// transition with its portfolio fan-out, and project resources and
// comments.
package projectsvc

import (
	organizationstore "github.com/dalemusser/projecthub/internal/app/store/organizations"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgProjectNotFound = "Project not found"
	msgNotOwner        = "Only the project liaison can modify this project"
)

// Config tunes the service.
type Config struct {
	MaxUploadBytes int64
	// FanOutLimit bounds concurrent portfolio writes; <= 0 is unbounded.
	FanOutLimit int
}

type Service struct {
	projects *projectstore.Store
	orgs     *organizationstore.Store
	users    *userstore.Store
	objects  objectstore.Store
	audit    *auditlog.Logger
	log      *zap.Logger
	cfg      Config
}

func New(db *mongo.Database, objects objectstore.Store, audit *auditlog.Logger, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		projects: projectstore.New(db),
		orgs:     organizationstore.New(db),
		users:    userstore.New(db),
		objects:  objects,
		audit:    audit,
		log:      logger,
		cfg:      cfg,
	}
}
