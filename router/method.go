// Package router compiles a tenant's route descriptions into a trie that
// maps (method, concrete path) to a handler name and captured parameters.
package router

import (
	"strings"

	"github.com/edgerun/edgerun/apperrors"
)

// Method is one of the nine HTTP methods the routing table recognizes.
type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

var methodIndex = map[Method]int{
	MethodGet:     0,
	MethodHead:    1,
	MethodPost:    2,
	MethodPut:     3,
	MethodDelete:  4,
	MethodPatch:   5,
	MethodOptions: 6,
	MethodTrace:   7,
	MethodConnect: 8,
}

// ParseMethod canonicalizes a case-insensitive method string, rejecting
// anything outside the closed enumeration.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	if _, ok := methodIndex[m]; !ok {
		return "", apperrors.Configf("unknown HTTP method %q", s)
	}
	return m, nil
}

// MethodTable holds one optional handler name per Method. It is a fixed
// nine-slot record, not an open-ended map, because Method is a closed
// enumeration.
type MethodTable struct {
	handlers [9]string
}

// Set assigns handler to method, returning a ConfigError if the slot is
// already occupied (a route config listing the same method twice for one
// path).
func (t *MethodTable) Set(method Method, handler string) error {
	idx, ok := methodIndex[method]
	if !ok {
		return apperrors.Configf("unknown HTTP method %q", method)
	}
	if t.handlers[idx] != "" {
		return apperrors.Configf("duplicate method %q for path", method)
	}
	t.handlers[idx] = handler
	return nil
}

// Get returns the handler bound to method and whether one is set.
func (t *MethodTable) Get(method Method) (string, bool) {
	idx, ok := methodIndex[method]
	if !ok {
		return "", false
	}
	h := t.handlers[idx]
	return h, h != ""
}

// IsEmpty reports whether no method slot has been set.
func (t *MethodTable) IsEmpty() bool {
	for _, h := range t.handlers {
		if h != "" {
			return false
		}
	}
	return true
}

// RouteDescription is the input form consumed when building a PathRouter:
// one (path, method, handler) triple from a tenant's route configuration.
type RouteDescription struct {
	Path    string
	Method  Method
	Handler string
}
