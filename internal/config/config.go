// Package config loads the application settings from environment variables
// and validates them on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Store    StoreConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds every request except imports, which use Upload.Timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig points at the timetable backend.
type BackendConfig struct {
	URL     string        `env:"BACKEND_URL" envAlt:"API_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" default:"30s"`

	// Sync sends records of panels with a backend resource to the backend
	// instead of the local store.
	Sync bool `env:"BACKEND_SYNC" default:"false"`
}

// StoreConfig selects where local panel records live.
type StoreConfig struct {
	// Backend is memory, file or postgres.
	Backend string `env:"STORE_BACKEND" default:"memory"`

	// Dir holds one JSON file per panel when Backend is file.
	Dir string `env:"STORE_DIR" default:"data"`

	// DatabaseURL is only required when Backend is postgres.
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns    int    `env:"DB_MAX_CONNS" default:"10"`
	MinConns    int    `env:"DB_MIN_CONNS" default:"2"`
}

// UploadConfig holds bulk import settings.
type UploadConfig struct {
	MaxFileSize   int64         `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`
	MaxConcurrent int           `env:"UPLOAD_MAX_CONCURRENT" default:"4"`
	MaxWaitTime   time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"15s"`
	Timeout       time.Duration `env:"UPLOAD_TIMEOUT" default:"5m"`

	// Encoding of uploaded text files: utf-8, windows-1252 or iso-8859-1.
	Encoding string `env:"UPLOAD_ENCODING" default:"utf-8"`

	// Strict rejects files with a line that ends inside quotes.
	Strict bool `env:"UPLOAD_STRICT" default:"false"`
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
	ImportLimit       int  `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP and X-Forwarded-For headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool   `env:"SECURITY_ENABLE_CSP" default:"true"`
	CSP       string `env:"SECURITY_CSP" default:"default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	Secret       string        `env:"AUTH_SECRET" required:"true"`
	AccessTTL    time.Duration `env:"AUTH_ACCESS_TTL" default:"1h"`
	RefreshTTL   time.Duration `env:"AUTH_REFRESH_TTL" default:"168h"`
	CookieName   string        `env:"AUTH_COOKIE_NAME" default:"session"`
	CookieSecure bool          `env:"AUTH_COOKIE_SECURE" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
