package router_test

import (
	"testing"

	"github.com/edgerun/edgerun/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndMatchStaticWinsOverParam(t *testing.T) {
	rt, err := router.Build([]router.RouteDescription{
		{Path: "/api/users/:id", Method: router.MethodGet, Handler: "getUser"},
		{Path: "/api/users/me", Method: router.MethodGet, Handler: "getMe"},
	})
	require.NoError(t, err)

	m, err := rt.Match(router.MethodGet, "/api/users/me")
	require.NoError(t, err)
	assert.Equal(t, "getMe", m.Handler)
	assert.Empty(t, m.Params)

	m, err = rt.Match(router.MethodGet, "/api/users/42")
	require.NoError(t, err)
	assert.Equal(t, "getUser", m.Handler)
	assert.Equal(t, "42", m.Params["id"])
}

func TestMatchCapturesNamedParams(t *testing.T) {
	rt, err := router.Build([]router.RouteDescription{
		{Path: "/api/:name/:id", Method: router.MethodGet, Handler: "show"},
	})
	require.NoError(t, err)

	m, err := rt.Match(router.MethodGet, "/api/widgets/7")
	require.NoError(t, err)
	assert.Equal(t, "show", m.Handler)
	assert.Equal(t, "widgets", m.Params["name"])
	assert.Equal(t, "7", m.Params["id"])
}

func TestMatchPathNotFound(t *testing.T) {
	rt, err := router.Build([]router.RouteDescription{
		{Path: "/hello", Method: router.MethodGet, Handler: "hello"},
	})
	require.NoError(t, err)

	_, err = rt.Match(router.MethodGet, "/missing")
	assert.Error(t, err)
}

func TestMatchMethodNotAllowed(t *testing.T) {
	rt, err := router.Build([]router.RouteDescription{
		{Path: "/hello", Method: router.MethodGet, Handler: "hello"},
	})
	require.NoError(t, err)

	_, err = rt.Match(router.MethodPost, "/hello")
	assert.Error(t, err)
}

func TestTrailingSlashIsSignificant(t *testing.T) {
	rt, err := router.Build([]router.RouteDescription{
		{Path: "/foo", Method: router.MethodGet, Handler: "noSlash"},
		{Path: "/foo/", Method: router.MethodGet, Handler: "withSlash"},
	})
	require.NoError(t, err)

	m, err := rt.Match(router.MethodGet, "/foo")
	require.NoError(t, err)
	assert.Equal(t, "noSlash", m.Handler)

	m, err = rt.Match(router.MethodGet, "/foo/")
	require.NoError(t, err)
	assert.Equal(t, "withSlash", m.Handler)
}

func TestBuildRejectsDuplicateMethodForSamePath(t *testing.T) {
	_, err := router.Build([]router.RouteDescription{
		{Path: "/dup", Method: router.MethodGet, Handler: "a"},
		{Path: "/dup", Method: router.MethodGet, Handler: "b"},
	})
	assert.Error(t, err)
}

func TestBuildRejectsPathNotStartingWithSlash(t *testing.T) {
	_, err := router.Build([]router.RouteDescription{
		{Path: "nope", Method: router.MethodGet, Handler: "a"},
	})
	assert.Error(t, err)
}

func TestParseMethodCaseInsensitive(t *testing.T) {
	m, err := router.ParseMethod("get")
	require.NoError(t, err)
	assert.Equal(t, router.MethodGet, m)

	_, err = router.ParseMethod("FROB")
	assert.Error(t, err)
}
