// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app, plus the
// process-wide resources whose lifetime follows them.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Objects objectstore.Store
	Audit   *audit.Store

	// Limiter is nil when rate limiting is disabled.
	Limiter *ratelimit.Limiter
	// Retention is nil when audit events are kept forever.
	Retention *workers.AuditRetention
}
