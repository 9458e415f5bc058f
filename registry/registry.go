// Package registry maps an inbound request's Host header to the tenant's
// Holder, the entry point into that tenant's swappable bundle.
package registry

import (
	"strings"
	"sync"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/bundle"
)

// Registry is a concurrent host -> *bundle.Holder map. Hosts are compared
// case-sensitively after stripping any ":port" suffix, matching typical
// HTTP Host header handling once the server has already normalized it.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*bundle.Holder
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{tenants: make(map[string]*bundle.Holder)}
}

// Insert registers holder under host, replacing any existing entry.
func (r *Registry) Insert(host string, holder *bundle.Holder) {
	host = normalizeHost(host)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants[host] = holder
}

// Remove drops the entry for host, if any.
func (r *Registry) Remove(host string) {
	host = normalizeHost(host)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tenants, host)
}

// Get looks up the Holder registered for host, stripping any port suffix
// first. Returns HostNotFound if no tenant is registered under that host.
func (r *Registry) Get(host string) (*bundle.Holder, error) {
	host = normalizeHost(host)

	r.mu.RLock()
	defer r.mu.RUnlock()

	holder, ok := r.tenants[host]
	if !ok {
		return nil, apperrors.HostNotFound(host)
	}
	return holder, nil
}

// Hosts returns a snapshot of every registered host.
func (r *Registry) Hosts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]string, 0, len(r.tenants))
	for h := range r.tenants {
		hosts = append(hosts, h)
	}
	return hosts
}

func normalizeHost(host string) string {
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		return host[:idx]
	}
	return host
}
