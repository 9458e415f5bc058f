package script

import (
	"sync"

	"github.com/edgerun/edgerun/apperrors"
)

// PoolRegistry is a concurrent host -> *Pool map, the same sync.RWMutex
// shape as registry.Registry: a tenant's pool is swapped wholesale on
// rebuild, so readers never observe a half-written pool.
type PoolRegistry struct {
	mu    sync.RWMutex
	pools map[string]*Pool
}

// NewPoolRegistry creates an empty PoolRegistry.
func NewPoolRegistry() *PoolRegistry {
	return &PoolRegistry{pools: make(map[string]*Pool)}
}

// Insert registers pool under host, replacing any existing entry.
func (r *PoolRegistry) Insert(host string, pool *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[host] = pool
}

// Get looks up the Pool registered for host. Returns HostNotFound if no
// tenant pool is registered under that host.
func (r *PoolRegistry) Get(host string) (*Pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pool, ok := r.pools[host]
	if !ok {
		return nil, apperrors.HostNotFound(host)
	}
	return pool, nil
}
