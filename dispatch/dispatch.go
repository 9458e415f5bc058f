// Package dispatch is the request-handling glue: host lookup in the Tenant
// Registry, atomic bundle load, path match, request marshalling, script
// invocation, and response write-out, each failure mode mapped to the HTTP
// status the error taxonomy names.
package dispatch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/logging"
	"github.com/edgerun/edgerun/marshal"
	"github.com/edgerun/edgerun/registry"
	"github.com/edgerun/edgerun/router"
	"github.com/edgerun/edgerun/script"
	"github.com/google/uuid"
)

// PoolLookup resolves the worker pool backing a tenant's current bundle.
// Dispatcher asks for it fresh on every request, after loading the bundle,
// since a Script Context pool corresponds 1:1 with a currently-published
// bundle's script source.
type PoolLookup func(host string) (*script.Pool, error)

// Dispatcher is the http.Handler mounted at the edge: it owns nothing but
// references to the Tenant Registry and a way to reach the pool serving
// whichever bundle the registry currently holds for a host.
type Dispatcher struct {
	registry       *registry.Registry
	pools          PoolLookup
	logger         *logging.Logger
	handlerTimeout time.Duration
}

// New creates a Dispatcher. handlerTimeout bounds every script invocation
// via context.WithTimeout; zero falls back to script.Pool's own
// DefaultTimeout.
func New(reg *registry.Registry, pools PoolLookup, logger *logging.Logger, handlerTimeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{registry: reg, pools: pools, logger: logger, handlerTimeout: handlerTimeout}
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set("X-Request-Id", requestID)

	resp, err := d.dispatch(r)
	if err != nil {
		apperrors.Handle(w, r, err)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	if resp.Body != nil {
		io.WriteString(w, *resp.Body)
	}
}

func (d *Dispatcher) dispatch(r *http.Request) (*marshal.Response, error) {
	host := r.Host

	holder, err := d.registry.Get(host)
	if err != nil {
		return nil, err
	}

	b := holder.Load()
	if b == nil {
		return nil, apperrors.HostNotFound(host)
	}

	method, err := router.ParseMethod(r.Method)
	if err != nil {
		return nil, apperrors.Configf("unsupported method %q", r.Method)
	}

	match, err := b.Router.Match(method, r.URL.Path)
	if err != nil {
		return nil, err
	}

	req, err := buildRequest(r, match.Params)
	if err != nil {
		return nil, err
	}

	pool, err := d.pools(normalizeHost(host))
	if err != nil {
		return nil, err
	}

	invokeCtx := r.Context()
	if d.handlerTimeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(invokeCtx, d.handlerTimeout)
		defer cancel()
	}

	resp, err := pool.Invoke(invokeCtx, match.Handler, req)
	if err != nil {
		return nil, err
	}

	d.logger.Request(host, r.Method, r.URL.Path, resp.Status, 0)

	return resp, nil
}

func buildRequest(r *http.Request, params map[string]string) (*marshal.Request, error) {
	query := make(map[string]string)
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}

	headers := make(map[string]string)
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	var body *string
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindIO, "failed to read request body", http.StatusBadRequest)
		}
		if len(raw) > 0 {
			s := string(raw)
			body = &s
		}
	}

	return &marshal.Request{
		Method:  r.Method,
		URL:     r.URL.String(),
		Query:   query,
		Params:  params,
		Headers: headers,
		Body:    body,
	}, nil
}

func normalizeHost(host string) string {
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		return host[:idx]
	}
	return host
}
