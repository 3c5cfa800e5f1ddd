package warehouse

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Adapter)
)

// Register adds an adapter factory to the registry.
// Called by adapter implementations in their init() functions.
func Register(name string, factory func() Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an adapter instance for the given source type.
func New(sourceType string) (Adapter, error) {
	if sourceType == "" {
		return nil, fmt.Errorf("source type not specified")
	}

	registryMu.RLock()
	factory, ok := registry[sourceType]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source type %q (available: %s)",
			sourceType, strings.Join(List(), ", "))
	}
	return factory(), nil
}

// List returns all registered source types, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
