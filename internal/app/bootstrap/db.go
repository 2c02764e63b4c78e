// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/projecthub/internal/app/store/audit"
	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/projecthub/internal/app/system/objectstore"
	"github.com/dalemusser/projecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/projecthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the object store and the other
// long-lived backends. The Mongo client is disconnected again if anything
// after the connect fails.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, appCfg.TimeoutMedium)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	objects, err := newObjectStore(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("object storage ready", zap.String("type", appCfg.StorageType))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Objects:       objects,
		Audit:         audit.New(db),
	}
	if appCfg.RateLimitPerMinute > 0 {
		deps.Limiter = ratelimit.New(appCfg.RateLimitPerMinute, appCfg.RateLimitBurst)
	}
	if appCfg.AuditRetention > 0 {
		deps.Retention = workers.NewAuditRetention(deps.Audit, logger, appCfg.AuditRetentionInterval, appCfg.AuditRetention)
	}
	return deps, nil
}

func newObjectStore(ctx context.Context, appCfg AppConfig) (objectstore.Store, error) {
	switch appCfg.StorageType {
	case StorageS3:
		s, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Region:    appCfg.StorageS3Region,
			Bucket:    appCfg.StorageS3Bucket,
			Prefix:    appCfg.StorageS3Prefix,
			Endpoint:  appCfg.StorageS3Endpoint,
			PublicURL: appCfg.StoragePublicURL,
			AccessKey: appCfg.StorageS3AccessKey,
			SecretKey: appCfg.StorageS3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	default:
		return objectstore.NewMemory(appCfg.StoragePublicURL), nil
	}
}

// EnsureSchema reconciles the collection indexes. It is idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index reconcile failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
