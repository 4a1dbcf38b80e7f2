package config

import (
	"errors"
	"fmt"

	"github.com/xinyong-bot/xinyong/internal/core"
)

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"": true, "text": true, "json": true}

// Validate checks the structural validity of a Config.
// It verifies the version field, ensures modules are present,
// and checks that all referenced module IDs exist in the registry.
// It also enforces that Configurable modules have a config entry
// and validates log, telemetry, and security settings.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	// Strict check: registered Configurable modules must have a config entry.
	for _, info := range core.GetModules() {
		mod := info.New()
		if _, ok := mod.(core.Configurable); ok {
			if _, exists := cfg.Modules[string(info.ID)]; !exists {
				errs = append(errs, fmt.Errorf("config: module %q requires configuration but has no entry", info.ID))
			}
		}
	}

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Errorf("config: unknown log level %q (debug, info, warn, error)", cfg.Log.Level))
	}
	if !validLogFormats[cfg.Log.Format] {
		errs = append(errs, fmt.Errorf("config: unknown log format %q (text, json)", cfg.Log.Format))
	}

	errs = append(errs, validateTelemetry(cfg.Telemetry)...)
	errs = append(errs, validateSecurity(cfg.Security)...)

	return errors.Join(errs...)
}

func validateTelemetry(tel *TelemetryConfig) []error {
	if tel == nil {
		return nil
	}
	var errs []error
	if tel.Enabled && tel.Endpoint == "" {
		errs = append(errs, errors.New("config: telemetry.enabled is true but no endpoint provided"))
	}
	return errs
}

func validateSecurity(sec *SecurityConfig) []error {
	if sec == nil {
		return nil
	}
	var errs []error
	if sec.RateLimit.RendersPerMin < 0 {
		errs = append(errs, errors.New("config: security.rate_limit.renders_per_min must not be negative"))
	}
	if sec.RateLimit.MaxTracked < 0 {
		errs = append(errs, errors.New("config: security.rate_limit.max_tracked must not be negative"))
	}
	return errs
}
