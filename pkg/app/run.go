// Package app provides the shared entry point for the xinyong daemon.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/xinyong-bot/xinyong/internal/config"
	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/security"
	"github.com/xinyong-bot/xinyong/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the persistent data directory. Takes precedence
	// over the config file's data_dir.
	DataDir string

	// AssetsDir overrides the render assets directory. Takes precedence
	// over the config file's assets_dir.
	AssetsDir string

	// LogLevel sets the minimum log level when the config file does not
	// specify one. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run loads configuration, starts all modules, and blocks until a shutdown
// signal is received.
func Run(params RunParams) error {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Credential store and redactor come first so every later log line
	// passes through the redacting handler.
	credStore := security.NewCredentialStore()
	redactor := security.NewRedactor()
	logger := slog.New(security.NewRedactingHandler(logHandler(cfg.Log, params.LogLevel), redactor))

	auditLogger, auditClose, err := buildAuditLogger(cfg.Security, redactor)
	if err != nil {
		return err
	}
	defer auditClose()

	rateLimiter := buildRateLimiter(cfg.Security)

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	assetsDir := params.AssetsDir
	if assetsDir == "" {
		assetsDir = cfg.AssetsDir
	}
	if assetsDir == "" {
		assetsDir = DefaultAssetsDir()
	}

	appCtx := core.NewAppContext(logger, dataDir, assetsDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	// Register security services for cross-module discovery.
	appCtx.RegisterService("security.credentials", credStore)
	appCtx.RegisterService("security.redactor", redactor)
	appCtx.RegisterService("security.audit", auditLogger)
	appCtx.RegisterService("security.ratelimiter", rateLimiter)

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, params.Version, logger)
	if err != nil {
		return err
	}

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Wire cross-module plumbing between LoadModules and Start: attach the
	// stats recorder to the render service and append the cron scheduler
	// to the app lifecycle.
	wireRecorder(appCtx, logger)
	if err := wireCron(application, appCtx, logger, rateLimiter); err != nil {
		return err
	}

	if err := application.Start(); err != nil {
		return err
	}

	// Sync the redactor with all credentials registered by modules during
	// Provision and Start, so runtime secrets never reach the logs.
	redactor.SyncCredentials(credStore)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	application.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// logHandler builds the slog handler described by cfg. The level falls back
// to fallback when the config does not set one; the format defaults to text.
func logHandler(cfg config.LogConfig, fallback slog.Level) slog.Handler {
	level := fallback
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// buildAuditLogger assembles the audit trail. Without a configured
// audit_log path events are dispatched but not persisted. The returned
// close function releases the underlying file, if any.
func buildAuditLogger(sec *config.SecurityConfig, redactor *security.Redactor) (*security.AuditLogger, func(), error) {
	if sec == nil || sec.AuditLog == "" {
		return security.NewAuditLogger(security.AuditLoggerConfig{Redactor: redactor}), func() {}, nil
	}

	f, err := os.OpenFile(sec.AuditLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit log: %w", err)
	}
	logger := security.NewAuditLogger(security.AuditLoggerConfig{
		Writer:   f,
		Redactor: redactor,
	})
	return logger, func() { _ = f.Close() }, nil
}

// buildRateLimiter creates the per-sender rate limiter. Zero-value fields
// fall back to the limiter's built-in defaults.
func buildRateLimiter(sec *config.SecurityConfig) *security.RateLimiter {
	if sec == nil {
		return security.NewRateLimiter(security.RateLimitConfig{})
	}
	return security.NewRateLimiter(security.RateLimitConfig{
		RendersPerMin: sec.RateLimit.RendersPerMin,
		MaxTracked:    sec.RateLimit.MaxTracked,
	})
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/xinyong/xinyong.yaml → ~/.config/xinyong/xinyong.yaml → ./xinyong.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "xinyong", "xinyong.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "xinyong", "xinyong.yaml"))
	}

	candidates = append(candidates, "xinyong.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/xinyong if set, otherwise ~/.local/share/xinyong per the XDG spec.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "xinyong")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "xinyong")
}

// DefaultAssetsDir returns the assets directory under the current working
// directory, the layout the setup command produces.
func DefaultAssetsDir() string {
	dir, _ := os.Getwd()
	return filepath.Join(dir, "assets")
}
