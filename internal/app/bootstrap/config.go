// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	orgsvc "github.com/dalemusser/projecthub/internal/app/services/organizations"
	"github.com/dalemusser/projecthub/internal/app/system/auditlog"
	"github.com/dalemusser/projecthub/internal/app/system/authscope"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends.
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// devJWTSecret is the out-of-the-box signing key. Production must override it.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for ProjectHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_mode, etc.
//   - Environment variables: PROJECTHUB_MONGO_URI, PROJECTHUB_AUTH_MODE, etc.
//   - Command-line flags: --mongo_uri, --auth_mode, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "projecthub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Authentication
	{Name: "auth_mode", Default: authscope.ModeJWT, Desc: "Caller authentication: 'jwt' or 'gateway'"},
	{Name: "auth_jwt_secret", Default: devJWTSecret, Desc: "HS256 secret for bearer tokens (must be strong in production)"},
	{Name: "auth_jwt_issuer", Default: "", Desc: "Expected token issuer (optional)"},
	{Name: "auth_jwt_audience", Default: "", Desc: "Expected token audience (optional)"},
	{Name: "scope_manage_project", Default: authscope.DefaultManageProject, Desc: "Scope token granting project management"},
	{Name: "scope_manage_entry", Default: authscope.DefaultManageEntry, Desc: "Scope token granting entry management"},
	{Name: "org_update_policy", Default: orgsvc.PolicyAny, Desc: "Who may modify organizations: 'any' or 'liaison'"},

	// Object storage
	{Name: "storage_type", Default: StorageMemory, Desc: "Object storage backend: 's3' or 'memory'"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "projecthub/", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "S3-compatible endpoint URL (optional)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "Static S3 access key (optional, default credential chain otherwise)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "Static S3 secret key"},
	{Name: "storage_public_url", Default: "", Desc: "Public base URL for stored objects (optional)"},
	{Name: "storage_max_upload_bytes", Default: 10 << 20, Desc: "Maximum decoded size of an inline upload"},

	// Audit logging
	{Name: "audit_log", Default: auditlog.DestAll, Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "0s", Desc: "Delete audit events older than this (e.g., 2160h); 0 keeps them"},
	{Name: "audit_retention_interval", Default: "1h", Desc: "How often the audit retention sweep runs"},

	// Rate limiting
	{Name: "rate_limit_per_minute", Default: 120, Desc: "Requests per minute per principal (0 disables)"},
	{Name: "rate_limit_burst", Default: 30, Desc: "Burst size for the rate limiter"},

	{Name: "fanout_limit", Default: 8, Desc: "Concurrent portfolio writes when a project completes"},

	// Timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for multi-step operations"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for fan-out operations"},
	{Name: "timeout_batch", Default: "60s", Desc: "Timeout for background sweeps"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PROJECTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROJECTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Authentication
		AuthMode:           strings.ToLower(strings.TrimSpace(appValues.String("auth_mode"))),
		AuthJWTSecret:      appValues.String("auth_jwt_secret"),
		AuthJWTIssuer:      appValues.String("auth_jwt_issuer"),
		AuthJWTAudience:    appValues.String("auth_jwt_audience"),
		ScopeManageProject: appValues.String("scope_manage_project"),
		ScopeManageEntry:   appValues.String("scope_manage_entry"),
		OrgUpdatePolicy:    strings.ToLower(strings.TrimSpace(appValues.String("org_update_policy"))),

		// Object storage
		StorageType:           strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageS3Region:       appValues.String("storage_s3_region"),
		StorageS3Bucket:       appValues.String("storage_s3_bucket"),
		StorageS3Prefix:       appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:     appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey:    appValues.String("storage_s3_access_key"),
		StorageS3SecretKey:    appValues.String("storage_s3_secret_key"),
		StoragePublicURL:      appValues.String("storage_public_url"),
		StorageMaxUploadBytes: int64(appValues.Int("storage_max_upload_bytes")),

		// Audit
		AuditLog:               appValues.String("audit_log"),
		AuditRetention:         appValues.Duration("audit_retention", 0),
		AuditRetentionInterval: appValues.Duration("audit_retention_interval", time.Hour),

		// Rate limiting
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
		RateLimitBurst:     appValues.Int("rate_limit_burst"),

		FanOutLimit: appValues.Int("fanout_limit"),

		// Timeouts
		TimeoutPing:   appValues.Duration("timeout_ping", 2*time.Second),
		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		TimeoutBatch:  appValues.Duration("timeout_batch", 60*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// ProjectHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and rejects settings that
// would only fail on the first request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if _, err := authscope.NewAuthenticator(appCfg.authConfig()); err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}
	if appCfg.AuthMode == authscope.ModeJWT && appCfg.AuthJWTSecret == devJWTSecret && coreCfg != nil && coreCfg.Env == "prod" {
		return fmt.Errorf("auth_jwt_secret must be changed from the development default in production")
	}
	if strings.TrimSpace(appCfg.ScopeManageProject) == "" || strings.TrimSpace(appCfg.ScopeManageEntry) == "" {
		return fmt.Errorf("scope_manage_project and scope_manage_entry must not be empty")
	}

	switch appCfg.StorageType {
	case StorageMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("in-memory object storage in production; uploads are lost on restart")
		}
	case StorageS3:
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type %q requires storage_s3_bucket", StorageS3)
		}
		if (appCfg.StorageS3AccessKey == "") != (appCfg.StorageS3SecretKey == "") {
			return fmt.Errorf("storage_s3_access_key and storage_s3_secret_key must be set together")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want %q or %q)", appCfg.StorageType, StorageS3, StorageMemory)
	}
	if appCfg.StorageMaxUploadBytes <= 0 {
		return fmt.Errorf("storage_max_upload_bytes must be positive")
	}

	if !orgsvc.IsValidPolicy(appCfg.OrgUpdatePolicy) {
		return fmt.Errorf("unknown org_update_policy %q (want %q or %q)", appCfg.OrgUpdatePolicy, orgsvc.PolicyAny, orgsvc.PolicyLiaison)
	}
	if !auditlog.IsValidDestination(appCfg.AuditLog) {
		return fmt.Errorf("unknown audit_log %q", appCfg.AuditLog)
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative")
	}
	if appCfg.RateLimitPerMinute < 0 || appCfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	return nil
}

func (c AppConfig) authConfig() authscope.Config {
	return authscope.Config{
		Mode:     c.AuthMode,
		Secret:   c.AuthJWTSecret,
		Issuer:   c.AuthJWTIssuer,
		Audience: c.AuthJWTAudience,
	}
}

func (c AppConfig) scopes() authscope.Scopes {
	return authscope.Scopes{ManageProject: c.ScopeManageProject, ManageEntry: c.ScopeManageEntry}
}
