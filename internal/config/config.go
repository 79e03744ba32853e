// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Engine   EngineConfig
	History  HistoryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// StorageConfig holds settings for the data directory browsed by the UI.
type StorageConfig struct {
	// DataDir is the root directory holding CSV files (default: data)
	DataDir string `env:"DATA_DIR" default:"data"`

	// MaxFileSize is the largest file accepted for upload or load, in bytes (default: 100MB)
	MaxFileSize int64 `env:"STORAGE_MAX_FILE_SIZE" default:"104857600"`
}

// EngineConfig holds schema inference and view session settings.
type EngineConfig struct {
	// SampleSize is how many leading rows are inspected per column during inference (default: 100)
	SampleSize int `env:"INFER_SAMPLE_SIZE" default:"100"`

	// Delimiter is the single-character field separator (default: ",")
	Delimiter string `env:"CSV_DELIMITER" default:","`

	// SessionTTL is how long an idle view session is kept in memory (default: 30m)
	SessionTTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// SweepInterval is how often expired sessions are evicted (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// MaxConcurrentLoads bounds parallel file loads (default: 4)
	MaxConcurrentLoads int `env:"LOAD_MAX_CONCURRENT" default:"4"`

	// MaxLoadWait is how long a load waits for a free slot (default: 10s)
	MaxLoadWait time.Duration `env:"LOAD_MAX_WAIT_TIME" default:"10s"`

	// PageSize is the default number of rows per table page (default: 50)
	PageSize int `env:"PAGE_SIZE" default:"50"`
}

// HistoryConfig holds settings for the load/mutation history store.
type HistoryConfig struct {
	// Driver selects the backend: none, postgres or sqlite (default: none)
	Driver string `env:"HISTORY_DRIVER" default:"none"`

	// DatabaseURL is the PostgreSQL connection string, required for the postgres driver.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: history.db)
	SQLitePath string `env:"SQLITE_PATH" default:"history.db"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// RetentionDays is how long history entries are kept (default: 90)
	RetentionDays int `env:"HISTORY_RETENTION_DAYS" default:"90"`

	// PruneInterval is how often old entries are removed (default: 24h)
	PruneInterval time.Duration `env:"HISTORY_PRUNE_INTERVAL" default:"24h"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey guards file mutations (upload, rename, delete, mkdir)
	// with an X-API-Key header (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DelimiterRune returns the configured delimiter as a rune, or ',' when unset.
func (c *EngineConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}
