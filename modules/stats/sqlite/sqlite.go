// Package sqlite implements a persistent SQLite-backed stats module that
// records render attempts. It uses modernc.org/sqlite (pure Go, no CGO)
// with WAL mode.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/sticker"

	_ "modernc.org/sqlite" // SQLite driver registration
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ sticker.Recorder  = (*Store)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module implements a SQLite-backed stats module. It provisions the render
// event store and registers it as the "stats.store" service, along with
// the configured retention window as "stats.retention".
type Module struct {
	config Config
	db     *sql.DB
	logger *slog.Logger
	store  *Store
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "stats.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, DefaultDBFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", m.config.Path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", m.config.Path, err)
	}

	// SQLite handles one writer at a time; limit pool to 1 connection
	// so PRAGMAs apply consistently.
	db.SetMaxOpenConns(1)

	if m.config.walEnabled() {
		if _, err := db.ExecContext(context.TODO(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}

	if _, err := db.ExecContext(context.TODO(), fmt.Sprintf("PRAGMA busy_timeout=%d", m.config.BusyTimeout)); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.store = &Store{db: db, logger: ctx.Logger}

	ctx.RegisterService("stats.store", m.store)
	ctx.RegisterService("stats.retention", m.Retention())

	m.logger.Info("sqlite stats module provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"retention_days", m.config.retentionDays(),
	)

	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if err := m.db.PingContext(context.TODO()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}

	var n int
	if err := m.db.QueryRowContext(context.TODO(), "SELECT count(*) FROM render_events").Scan(&n); err != nil {
		return fmt.Errorf("sqlite: schema probe failed: %w", err)
	}

	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite stats module stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Store returns the event store.
func (m *Module) Store() *Store {
	return m.store
}

// Retention returns the configured retention window. Zero means keep forever.
func (m *Module) Retention() time.Duration {
	return time.Duration(m.config.retentionDays()) * 24 * time.Hour
}
