package middleware

import (
	"net/http"

	"github.com/samber/lo"
)

// Middleware is the standard Chi-style signature.
type Middleware func(http.Handler) http.Handler

// Stack allows composing multiple middlewares. The first middleware passed
// to NewStack wraps everything after it, so it runs outermost.
type Stack struct {
	middlewares []Middleware
}

// NewStack creates a new middleware stack.
func NewStack(middlewares ...Middleware) *Stack {
	return &Stack{
		middlewares: middlewares,
	}
}

// Then applies all middlewares to a handler.
func (s *Stack) Then(h http.Handler) http.Handler {
	return lo.ReduceRight(s.middlewares, func(handler http.Handler, m Middleware, _ int) http.Handler {
		return m(handler)
	}, h)
}

// Conditional wraps m so it only runs when condition reports true for the
// incoming request; otherwise the request passes straight to next.
func Conditional(condition func(*http.Request) bool, m Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if condition(r) {
				m(next).ServeHTTP(w, r)
			} else {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SkipPaths wraps m so it is bypassed for requests whose path is in paths.
func SkipPaths(paths []string, m Middleware) Middleware {
	return Conditional(func(r *http.Request) bool {
		return !lo.Contains(paths, r.URL.Path)
	}, m)
}

// responseWriter wrapper to capture status and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
	wrote  bool
}

// NewResponseWriter creates a ResponseWriter wrapper.
func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(status int) {
	if !rw.wrote {
		rw.status = status
		rw.wrote = true
		rw.ResponseWriter.WriteHeader(status)
	}
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wrote {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the response status code.
func (rw *responseWriter) Status() int {
	return rw.status
}

// Size returns the response size in bytes.
func (rw *responseWriter) Size() int {
	return rw.size
}
