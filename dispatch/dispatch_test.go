package dispatch_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edgerun/edgerun/bundle"
	"github.com/edgerun/edgerun/dispatch"
	"github.com/edgerun/edgerun/registry"
	"github.com/edgerun/edgerun/router"
	"github.com/edgerun/edgerun/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoModule = `
(function(){
	function echo(req){
		return {status: 200, headers: {"x-handler":"echo"}, body: req.params.id || ""};
	}
	return {echo: echo};
})();
`

func newTestDispatcher(t *testing.T) (*dispatch.Dispatcher, string) {
	t.Helper()

	b, err := bundle.New(echoModule, []router.RouteDescription{
		{Path: "/items/:id", Method: router.MethodGet, Handler: "echo"},
	})
	require.NoError(t, err)

	reg := registry.New()
	reg.Insert("tenant.test", bundle.NewHolder(b))

	pool, err := script.NewPool(echoModule, 1, nil)
	require.NoError(t, err)

	d := dispatch.New(reg, func(host string) (*script.Pool, error) {
		return pool, nil
	}, nil, time.Second)

	return d, "tenant.test"
}

func TestDispatcherServesMatchedRoute(t *testing.T) {
	d, host := newTestDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Host = host
	rec := httptest.NewRecorder()

	d.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
	assert.Equal(t, "echo", rec.Header().Get("x-handler"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDispatcherUnknownHostReturns404(t *testing.T) {
	d, _ := newTestDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Host = "unknown.test"
	rec := httptest.NewRecorder()

	d.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatcherUnknownPathReturns404(t *testing.T) {
	d, host := newTestDispatcher(t)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Host = host
	rec := httptest.NewRecorder()

	d.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatcherWrongMethodReturns405(t *testing.T) {
	d, host := newTestDispatcher(t)

	req := httptest.NewRequest(http.MethodPost, "/items/42", nil)
	req.Host = host
	rec := httptest.NewRecorder()

	d.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDispatcherEnforcesConfiguredHandlerTimeout(t *testing.T) {
	spinModule := `(function(){function spin(req){while(true){}}return{spin:spin};})();`

	b, err := bundle.New(spinModule, []router.RouteDescription{
		{Path: "/spin", Method: router.MethodGet, Handler: "spin"},
	})
	require.NoError(t, err)

	reg := registry.New()
	reg.Insert("tenant.test", bundle.NewHolder(b))

	pool, err := script.NewPool(spinModule, 1, nil)
	require.NoError(t, err)

	// No deadline is attached to the incoming request; the configured
	// handlerTimeout alone must bound the invocation.
	d := dispatch.New(reg, func(host string) (*script.Pool, error) {
		return pool, nil
	}, nil, 50*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/spin", nil)
	req.Host = "tenant.test"
	rec := httptest.NewRecorder()

	d.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
