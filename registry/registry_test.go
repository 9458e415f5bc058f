package registry_test

import (
	"testing"

	"github.com/edgerun/edgerun/bundle"
	"github.com/edgerun/edgerun/registry"
	"github.com/edgerun/edgerun/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHolder(t *testing.T) *bundle.Holder {
	t.Helper()
	b, err := bundle.New("v1", []router.RouteDescription{
		{Path: "/hello", Method: router.MethodGet, Handler: "hello"},
	})
	require.NoError(t, err)
	return bundle.NewHolder(b)
}

func TestGetStripsPortSuffix(t *testing.T) {
	reg := registry.New()
	reg.Insert("example.com", testHolder(t))

	holder, err := reg.Get("example.com:8080")
	require.NoError(t, err)
	assert.NotNil(t, holder)
}

func TestGetIsCaseSensitive(t *testing.T) {
	reg := registry.New()
	reg.Insert("Example.com", testHolder(t))

	_, err := reg.Get("example.com")
	assert.Error(t, err)
}

func TestGetUnknownHostReturnsHostNotFound(t *testing.T) {
	reg := registry.New()

	_, err := reg.Get("unknown.test")
	assert.Error(t, err)
}

func TestRemoveDropsEntry(t *testing.T) {
	reg := registry.New()
	reg.Insert("example.com", testHolder(t))
	reg.Remove("example.com")

	_, err := reg.Get("example.com")
	assert.Error(t, err)
}
