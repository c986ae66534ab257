package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/timetable-admin/internal/auth"
)

var (
	registry   = make(map[string]PanelDefinition)
	registryMu sync.RWMutex
)

// Register adds a panel definition to the registry.
// Panics on a duplicate key or a definition without headers or Build.
func Register(def PanelDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := def.Info.Key
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("panel already registered: %s", key))
	}
	if len(def.Info.Headers) == 0 || def.Build == nil {
		panic(fmt.Sprintf("panel %s needs headers and a build func", key))
	}
	if def.Info.Label == "" {
		def.Info.Label = key
	}

	registry[key] = def
}

// Get returns a panel definition by key.
func Get(key string) (PanelDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns every panel sorted by group then key.
func All() []PanelDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]PanelDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sortPanels(result)
	return result
}

// ForRole returns the panels a role may use, sorted like All.
func ForRole(role auth.Role) []PanelDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []PanelDefinition
	for _, def := range registry {
		if def.Info.AllowedFor(role) {
			result = append(result, def)
		}
	}
	sortPanels(result)
	return result
}

// Groups returns the distinct group names, sorted.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Count returns the number of registered panels.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all panels. Tests only.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]PanelDefinition)
}

func sortPanels(defs []PanelDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Info.Group != defs[j].Info.Group {
			return defs[i].Info.Group < defs[j].Info.Group
		}
		return defs[i].Info.Key < defs[j].Info.Key
	})
}
