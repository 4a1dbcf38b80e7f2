package core

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// registry is the process-wide module catalog, filled from init functions.
type registry struct {
	mu      sync.RWMutex
	entries map[string]ModuleInfo
}

var catalog = &registry{entries: make(map[string]ModuleInfo)}

// RegisterModule adds a module to the catalog under its ModuleInfo ID.
// Empty IDs, nil constructors and duplicate registrations panic.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if info.ID == "" {
		panic("module ID must not be empty")
	}
	if info.New == nil {
		panic(fmt.Sprintf("module %s: New function must not be nil", info.ID))
	}

	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	id := string(info.ID)
	if _, exists := catalog.entries[id]; exists {
		panic(fmt.Sprintf("module already registered: %s", id))
	}
	catalog.entries[id] = info
}

// GetModule looks up one registered module by ID.
func GetModule(id string) (ModuleInfo, bool) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	info, ok := catalog.entries[id]
	return info, ok
}

// GetModules returns every registered module, sorted by ID.
func GetModules() []ModuleInfo {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	infos := make([]ModuleInfo, 0, len(catalog.entries))
	for _, info := range catalog.entries {
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

// resetRegistry clears the catalog. Only for testing.
func resetRegistry() {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	catalog.entries = make(map[string]ModuleInfo)
}
