// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - Request body size limits
//
// AppConfig carries everything specific to ProjectHub: the MongoDB
// connection, how callers are authenticated, object storage, audit and
// rate-limit settings, and handler timeouts.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Authentication
	AuthMode        string // "jwt" (verify bearer tokens) or "gateway" (trust upstream headers)
	AuthJWTSecret   string // HS256 signing key (jwt mode)
	AuthJWTIssuer   string // optional expected iss
	AuthJWTAudience string // optional expected aud

	// Scope tokens that grant mutation rights
	ScopeManageProject string
	ScopeManageEntry   string

	// Who may modify an organization: "any" manage-project holder or only its "liaison"s
	OrgUpdatePolicy string

	// Object storage
	StorageType           string // "s3" or "memory"
	StorageS3Region       string
	StorageS3Bucket       string
	StorageS3Prefix       string // key prefix inside the bucket
	StorageS3Endpoint     string // S3-compatible endpoint (MinIO, R2, ...)
	StorageS3AccessKey    string // static credentials; default AWS chain when blank
	StorageS3SecretKey    string
	StoragePublicURL      string // base URL for object URIs (CDN)
	StorageMaxUploadBytes int64  // decoded size limit for inline uploads

	// Audit trail
	AuditLog               string        // "all", "db", "log" or "off"
	AuditRetention         time.Duration // 0 keeps events forever
	AuditRetentionInterval time.Duration

	// Per-principal rate limiting; 0 per minute disables it
	RateLimitPerMinute int
	RateLimitBurst     int

	// Bounded concurrency for the portfolio fan-out on completion
	FanOutLimit int

	// Handler timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}
