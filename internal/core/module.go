package core

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g. "channel.telegram", "stats.sqlite").
type ModuleID string

// Namespace returns the portion of the ID before the last dot,
// or "" if the ID has no namespace.
func (id ModuleID) Namespace() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[:i]
		}
	}
	return ""
}

// Name returns the portion of the ID after the last dot.
func (id ModuleID) Name() string {
	s := string(id)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return s[i+1:]
		}
	}
	return s
}

// ModuleInfo describes a registered module: its ID and a constructor
// returning a fresh, unconfigured instance.
type ModuleInfo struct {
	// ID is the unique dot-namespaced identifier.
	ID ModuleID

	// New returns a new, unconfigured instance of the module.
	// It must not return nil.
	New func() Module
}

// Module is the minimal interface every module implements. Lifecycle
// behavior is added through the optional interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
