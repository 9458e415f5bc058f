package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackThen(t *testing.T) {
	var order []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	})

	stack := NewStack(m1, m2)
	wrappedHandler := stack.Then(handler)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(rec, req)

	// m1 is outermost since it was registered first.
	expected := []string{
		"m1-before",
		"m2-before",
		"handler",
		"m2-after",
		"m1-after",
	}

	assert.Equal(t, expected, order)
}

func TestConditional(t *testing.T) {
	var executed bool

	m := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			executed = true
			next.ServeHTTP(w, r)
		})
	}

	condition := func(r *http.Request) bool {
		return r.URL.Path == "/test"
	}

	conditional := Conditional(condition, m)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	executed = false
	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()
	conditional(handler).ServeHTTP(rec, req)
	assert.True(t, executed)

	executed = false
	req = httptest.NewRequest("GET", "/other", nil)
	rec = httptest.NewRecorder()
	conditional(handler).ServeHTTP(rec, req)
	assert.False(t, executed)
}

func TestSkipPaths(t *testing.T) {
	var executed bool

	m := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			executed = true
			next.ServeHTTP(w, r)
		})
	}

	skipPaths := []string{"/health", "/metrics"}
	wrapped := SkipPaths(skipPaths, m)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Path skipped
	executed = false
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	wrapped(handler).ServeHTTP(rec, req)
	assert.False(t, executed)

	// Path not skipped
	executed = false
	req = httptest.NewRequest("GET", "/api", nil)
	rec = httptest.NewRecorder()
	wrapped(handler).ServeHTTP(rec, req)
	assert.True(t, executed)
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rw.Status())

	n, err := rw.Write([]byte("Hello World"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, 11, rw.Size())

	rw.Write([]byte(" Test"))
	assert.Equal(t, 16, rw.Size())
}

func TestResponseWriterDefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	// Write without WriteHeader should use 200
	rw.Write([]byte("test"))
	assert.Equal(t, http.StatusOK, rw.Status())
}

func TestResponseWriterMultipleWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rw.Status())

	// Second WriteHeader should not change status
	rw.WriteHeader(http.StatusBadRequest)
	assert.Equal(t, http.StatusCreated, rw.Status())
}

func BenchmarkStack(b *testing.B) {
	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	stack := NewStack(m1, m1, m1)
	wrappedHandler := stack.Then(handler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		rec := httptest.NewRecorder()
		wrappedHandler.ServeHTTP(rec, req)
	}
}

func ExampleStack() {
	stack := NewStack(
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Println("Middleware 1")
				next.ServeHTTP(w, r)
			})
		},
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Println("Middleware 2")
				next.ServeHTTP(w, r)
			})
		},
	)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Println("Handler")
	})

	wrappedHandler := stack.Then(handler)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	// Output:
	// Middleware 1
	// Middleware 2
	// Handler
}
