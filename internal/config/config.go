// Package config provides centralized configuration for the catalog importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Import    ImportConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Retention RetentionConfig
	Redis     RedisConfig
	Archive   ArchiveConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 10m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds non-import requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds product import pipeline settings.
type ImportConfig struct {
	// ChunkSize is the number of products per insert round trip (default: 50)
	ChunkSize int `env:"IMPORT_CHUNK_SIZE" default:"50"`

	// RawChunkSize is the number of staging rows per insert (default: 200)
	RawChunkSize int `env:"IMPORT_RAW_CHUNK_SIZE" default:"200"`

	// MappingVersion selects the active category mapping rules (default: v1)
	MappingVersion string `env:"IMPORT_MAPPING_VERSION" default:"v1"`

	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// AllowedExtensions is the comma-separated upload allow-list
	AllowedExtensions []string `env:"IMPORT_ALLOWED_EXTENSIONS" default:".csv,.xlsx"`

	// FallbackCharset decodes files that are not UTF-8; empty disables (default: windows-1252)
	FallbackCharset string `env:"IMPORT_FALLBACK_CHARSET" default:"windows-1252"`

	// UpdateExisting updates products whose SKU already exists instead of skipping them
	UpdateExisting bool `env:"IMPORT_UPDATE_EXISTING" default:"false"`

	// MaxConcurrent is the number of imports allowed to run at once (default: 1)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"1"`

	// AcquireTimeout is how long to wait for an import slot (default: 30s)
	AcquireTimeout time.Duration `env:"IMPORT_ACQUIRE_TIMEOUT" default:"30s"`

	// Timeout is the maximum duration for a single import (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`
}

// Options converts the import settings to pipeline options.
func (c ImportConfig) Options() core.Options {
	return core.Options{
		ChunkSize:      c.ChunkSize,
		RawChunkSize:   c.RawChunkSize,
		MappingVersion: c.MappingVersion,
		UpdateExisting: c.UpdateExisting,
		Read: core.ReadOptions{
			MaxFileSize:       c.MaxFileSize,
			AllowedExtensions: c.AllowedExtensions,
			FallbackCharset:   c.FallbackCharset,
		},
		MaxConcurrent:  c.MaxConcurrent,
		AcquireTimeout: c.AcquireTimeout,
	}
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// Burst is the number of requests allowed above the steady rate (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey rejects /api requests without a valid X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// RetentionConfig holds staging retention settings.
type RetentionConfig struct {
	// Enabled starts the background purge job (default: true)
	Enabled bool `env:"RETENTION_ENABLED" default:"true"`

	// RawRowDays is days to keep raw staging rows (default: 90)
	RawRowDays int `env:"RETENTION_RAW_ROW_DAYS" default:"90"`

	// BatchSize is rows deleted per statement (default: 5000)
	BatchSize int `env:"RETENTION_BATCH_SIZE" default:"5000"`

	// CheckInterval is how often to run the purge job (default: 24h)
	CheckInterval time.Duration `env:"RETENTION_CHECK_INTERVAL" default:"24h"`
}

// Core converts the retention settings for the scheduler.
func (c RetentionConfig) Core() core.RetentionConfig {
	return core.RetentionConfig{
		RawRowDays:    c.RawRowDays,
		BatchSize:     c.BatchSize,
		CheckInterval: c.CheckInterval,
	}
}

// RedisConfig holds the mapping rule cache settings.
type RedisConfig struct {
	// URL is the redis connection URL; empty disables the cache
	URL string `env:"REDIS_URL"`

	// RuleTTL is how long a cached rule set stays valid (default: 5m)
	RuleTTL time.Duration `env:"REDIS_RULE_TTL" default:"5m"`

	// KeyPrefix namespaces cache keys (default: catalog:rules:)
	KeyPrefix string `env:"REDIS_KEY_PREFIX" default:"catalog:rules:"`
}

// Enabled reports whether a redis URL is configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// ArchiveConfig holds uploaded source file archiving settings.
type ArchiveConfig struct {
	// Bucket is the S3 bucket for uploaded files; empty disables archiving
	Bucket string `env:"ARCHIVE_S3_BUCKET"`

	// Prefix is prepended to every object key (default: imports/)
	Prefix string `env:"ARCHIVE_S3_PREFIX" default:"imports/"`

	// Region overrides the AWS region from the environment
	Region string `env:"ARCHIVE_S3_REGION" envAlt:"AWS_REGION"`

	// Endpoint points at an S3-compatible store such as MinIO
	Endpoint string `env:"ARCHIVE_S3_ENDPOINT"`

	// UsePathStyle addresses objects as endpoint/bucket/key (default: false)
	UsePathStyle bool `env:"ARCHIVE_S3_PATH_STYLE" default:"false"`

	// Timeout bounds one upload (default: 30s)
	Timeout time.Duration `env:"ARCHIVE_S3_TIMEOUT" default:"30s"`
}

// Enabled reports whether a bucket is configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records pipeline metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Namespace prefixes every metric name (default: catalog)
	Namespace string `env:"METRICS_NAMESPACE" default:"catalog"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
