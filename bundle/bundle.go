// Package bundle holds the immutable per-tenant TenantBundle and the
// wait-free SwappableHolder that publishes new bundles without disturbing
// in-flight requests against the old one.
package bundle

import (
	"github.com/edgerun/edgerun/router"
	"go.uber.org/atomic"
)

// TenantBundle is the immutable pair a tenant's request handling runs
// against: the raw script source (re-evaluated per worker in the Script
// Context pool) and the compiled Path Router built from its route config.
type TenantBundle struct {
	ScriptSource string
	Router       *router.Router
}

// New builds a TenantBundle from a script source and a set of route
// descriptions.
func New(scriptSource string, routes []router.RouteDescription) (*TenantBundle, error) {
	rt, err := router.Build(routes)
	if err != nil {
		return nil, err
	}
	return &TenantBundle{ScriptSource: scriptSource, Router: rt}, nil
}

// Holder is the swappable, wait-free-for-readers cell wrapping one tenant's
// current TenantBundle. Load returns a handle that stays valid even across
// subsequent Store calls, since Go's garbage collector keeps the old bundle
// alive as long as the returned pointer is referenced.
type Holder struct {
	current atomic.Value // holds *TenantBundle
}

// NewHolder creates a Holder pre-populated with initial.
func NewHolder(initial *TenantBundle) *Holder {
	h := &Holder{}
	h.current.Store(initial)
	return h
}

// Load returns the currently published TenantBundle. It never blocks.
func (h *Holder) Load() *TenantBundle {
	v := h.current.Load()
	if v == nil {
		return nil
	}
	return v.(*TenantBundle)
}

// Store publishes next as the current bundle. Any Load returning after this
// call observes next; any Load already in progress is unaffected.
func (h *Holder) Store(next *TenantBundle) {
	h.current.Store(next)
}
