package config

import (
	"maps"
	"slices"
)

// Resolve lists the configured module IDs in sorted order. Modules load in
// this order, so startup stays deterministic regardless of how the YAML map
// was written.
func Resolve(cfg *Config) []string {
	return slices.Sorted(maps.Keys(cfg.Modules))
}
