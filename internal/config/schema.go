// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for xinyong.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Log controls the daemon-wide slog handler.
	Log LogConfig `yaml:"log,omitempty"`

	// DataDir is the root directory for persistent state (stats database).
	// Defaults to an OS-appropriate data directory when empty.
	DataDir string `yaml:"data_dir,omitempty"`

	// AssetsDir is the directory holding the render assets: the CJK and
	// Latin fonts and the plus/minus base images.
	AssetsDir string `yaml:"assets_dir,omitempty"`

	// Telemetry holds optional OpenTelemetry trace export settings.
	Telemetry *TelemetryConfig `yaml:"telemetry,omitempty"`

	// Security holds optional rate limiting and audit log settings.
	Security *SecurityConfig `yaml:"security,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "channel.telegram").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json". Defaults to "text".
	Format string `yaml:"format,omitempty"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RateLimit bounds per-sender render attempts.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// AuditLog is the path of the JSONL audit trail. Empty keeps audit
	// events off disk.
	AuditLog string `yaml:"audit_log,omitempty"`
}

// RateLimitConfig bounds how often a single sender can trigger renders.
type RateLimitConfig struct {
	// RendersPerMin caps render attempts per sender per minute.
	// Zero applies the built-in default.
	RendersPerMin int `yaml:"renders_per_min,omitempty"`

	// MaxTracked bounds the number of senders tracked at once.
	// Zero applies the built-in default.
	MaxTracked int `yaml:"max_tracked,omitempty"`
}

// TelemetryConfig holds OTLP trace export settings.
type TelemetryConfig struct {
	// Enabled turns on span export. When false no exporter is configured
	// and spans are no-ops.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS for the exporter connection.
	Insecure bool `yaml:"insecure,omitempty"`

	// ServiceName overrides the reported service.name. Defaults to "xinyong".
	ServiceName string `yaml:"service_name,omitempty"`
}
