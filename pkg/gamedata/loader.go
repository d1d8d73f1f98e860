package gamedata

import (
	"fmt"
	"sort"
	"sync"
)

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]func() (AttributeRegistry, error){}
)

// Register makes a named catalog factory available to Load. Registering the
// same name twice replaces the earlier factory.
func Register(name string, factory func() (AttributeRegistry, error)) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[name] = factory
}

// Load builds the catalog registered under name.
func Load(name string) (AttributeRegistry, error) {
	catalogsMu.RLock()
	f, ok := catalogs[name]
	catalogsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown catalog: %s", name)
	}
	reg, err := f()
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", name, err)
	}
	return reg, nil
}

// RegisteredCatalogs returns the registered catalog names in sorted order.
func RegisteredCatalogs() []string {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
