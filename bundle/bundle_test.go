package bundle_test

import (
	"sync"
	"testing"

	"github.com/edgerun/edgerun/bundle"
	"github.com/edgerun/edgerun/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routes(handler string) []router.RouteDescription {
	return []router.RouteDescription{
		{Path: "/hello", Method: router.MethodGet, Handler: handler},
	}
}

func TestHolderLoadReturnsInitialBundle(t *testing.T) {
	b, err := bundle.New("export const handlers = {}", routes("v1"))
	require.NoError(t, err)

	h := bundle.NewHolder(b)
	assert.Equal(t, b, h.Load())
}

func TestHolderStoreIsVisibleToSubsequentLoads(t *testing.T) {
	b1, err := bundle.New("v1", routes("v1"))
	require.NoError(t, err)
	b2, err := bundle.New("v2", routes("v2"))
	require.NoError(t, err)

	h := bundle.NewHolder(b1)
	h.Store(b2)

	assert.Same(t, b2, h.Load())
}

func TestHolderInFlightHandleSurvivesSwap(t *testing.T) {
	b1, err := bundle.New("v1", routes("v1"))
	require.NoError(t, err)
	b2, err := bundle.New("v2", routes("v2"))
	require.NoError(t, err)

	h := bundle.NewHolder(b1)

	handle := h.Load()
	h.Store(b2)

	assert.Same(t, b1, handle)
	assert.Same(t, b2, h.Load())
}

func TestHolderConcurrentLoadAndStore(t *testing.T) {
	b1, err := bundle.New("v1", routes("v1"))
	require.NoError(t, err)
	b2, err := bundle.New("v2", routes("v2"))
	require.NoError(t, err)

	h := bundle.NewHolder(b1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Store(b2)
		}()
		go func() {
			defer wg.Done()
			got := h.Load()
			assert.NotNil(t, got)
		}()
	}
	wg.Wait()
}
