package script_test

import (
	"sync"
	"testing"

	"github.com/edgerun/edgerun/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *script.Pool {
	t.Helper()
	pool, err := script.NewPool(helloModule, 1, nil)
	require.NoError(t, err)
	return pool
}

func TestPoolRegistryGetUnknownHostReturnsError(t *testing.T) {
	reg := script.NewPoolRegistry()

	_, err := reg.Get("unknown.test")
	assert.Error(t, err)
}

func TestPoolRegistryInsertThenGet(t *testing.T) {
	reg := script.NewPoolRegistry()
	pool := testPool(t)
	reg.Insert("example.com", pool)

	got, err := reg.Get("example.com")
	require.NoError(t, err)
	assert.Same(t, pool, got)
}

func TestPoolRegistryConcurrentInsertAndGet(t *testing.T) {
	reg := script.NewPoolRegistry()
	reg.Insert("example.com", testPool(t))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Insert("example.com", testPool(t))
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Get("example.com")
		}()
	}
	wg.Wait()
}
