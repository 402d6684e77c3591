// Package config loads application settings from environment variables,
// applies defaults and validates the result on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Fetch    FetchConfig
	S3       S3Config
	Merge    MergeConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// FetchConfig holds settings for downloading tables.
type FetchConfig struct {
	// Timeout bounds one download (default: 30s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"30s"`

	// MaxBytes caps one downloaded table (default: 100MB)
	MaxBytes int64 `env:"FETCH_MAX_BYTES" default:"104857600"`

	// RateLimit is outgoing HTTP requests per second (default: 5)
	RateLimit float64 `env:"FETCH_RATE_LIMIT" default:"5"`

	// RateBurst is the outgoing request burst (default: 5)
	RateBurst int `env:"FETCH_RATE_BURST" default:"5"`

	// UserAgent is sent with every HTTP fetch
	UserAgent string `env:"FETCH_USER_AGENT" default:"csvunion/1.0"`

	// AllowFiles permits local paths and file:// locators (default: false)
	AllowFiles bool `env:"FETCH_ALLOW_FILES" default:"false"`
}

// S3Config holds object storage settings. S3 locators are rejected when
// Endpoint is empty.
type S3Config struct {
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID" envAlt:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" envAlt:"AWS_SECRET_ACCESS_KEY"`
	Region          string `env:"S3_REGION" envAlt:"AWS_REGION"`
	UseSSL          bool   `env:"S3_USE_SSL" default:"true"`
}

// Enabled reports whether S3 locators can be served.
func (c *S3Config) Enabled() bool {
	return c.Endpoint != ""
}

// MergeConfig holds merge processing settings.
type MergeConfig struct {
	// MaxTables caps tables per merge (default: 50)
	MaxTables int `env:"MERGE_MAX_TABLES" default:"50"`

	// MaxParallel caps tables fetched at once within a merge (default: 8)
	MaxParallel int `env:"MERGE_MAX_PARALLEL" default:"8"`

	// MaxConcurrent is the number of merges the server runs at once (default: 4)
	MaxConcurrent int `env:"MERGE_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a merge slot (default: 30s)
	MaxWaitTime time.Duration `env:"MERGE_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds one merge (default: 60s)
	Timeout time.Duration `env:"MERGE_TIMEOUT" default:"60s"`

	// MaxUploadSize caps a multipart upload request (default: 100MB)
	MaxUploadSize int64 `env:"MERGE_MAX_UPLOAD_SIZE" default:"104857600"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate per IP (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`

	// Burst is the number of requests allowed at once per IP (default: 10)
	Burst int `env:"RATE_LIMIT_BURST" default:"10"`
}

// SecurityConfig holds settings for trusting proxies and authenticating
// clients.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of accepted X-API-Key values. The
	// API is open when empty.
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
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
