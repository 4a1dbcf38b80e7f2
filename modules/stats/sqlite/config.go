package sqlite

import "fmt"

// DefaultDBFile is the database filename used under the data directory when
// no explicit path is configured. Exported for the CLI stats command.
const DefaultDBFile = "stats.db"

const (
	defaultBusyTimeout   = 5000
	defaultRetentionDays = 90
)

// Config holds the SQLite stats module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/stats.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode for concurrent reads. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// RetentionDays is how long render events are kept before the prune job
	// removes them. Defaults to 90. An explicit zero keeps events forever.
	RetentionDays *int `yaml:"retention_days"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.RetentionDays == nil {
		d := defaultRetentionDays
		c.RetentionDays = &d
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) retentionDays() int {
	if c.RetentionDays == nil {
		return defaultRetentionDays
	}
	return *c.RetentionDays
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	if c.retentionDays() < 0 {
		return fmt.Errorf("sqlite: retention_days must be non-negative, got %d", c.retentionDays())
	}
	return nil
}
