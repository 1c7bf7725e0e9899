package registry

import "sync"

// Registry is a process-wide key-value store for extension registration
// (commands, cron jobs, API modules, GraphQL schema parts). Keys can be
// locked once startup wiring is done; writes after Lock panic at the
// call sites that check IsLocked.
type Registry struct {
	mu     sync.RWMutex
	global map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry is the shared instance used by the cmd/api/cron registries.
var GlobalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		global: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
}

// GetGlobal returns the value stored under key.
func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.global[key]
	return v, ok
}

// SetGlobal stores a value under key.
func (r *Registry) SetGlobal(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global[key] = value
}

// Lock marks a key immutable.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked[key] = true
}

// IsLocked reports whether a key has been locked.
func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting clears the lock on a key (for tests only).
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locked, key)
}
