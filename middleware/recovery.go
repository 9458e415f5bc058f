package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/edgerun/edgerun/apperrors"
	"github.com/edgerun/edgerun/logging"
)

// RecoveryConfig configures the recovery middleware.
type RecoveryConfig struct {
	ErrorHandler *apperrors.Handler
	Logger       *logging.Logger
	PrintStack   bool
	OnPanic      func(r *http.Request, rec any)
}

// DefaultRecoveryConfig returns a default configuration.
func DefaultRecoveryConfig(errorHandler *apperrors.Handler) *RecoveryConfig {
	return &RecoveryConfig{
		ErrorHandler: errorHandler,
		Logger:       logging.Default(),
		PrintStack:   false,
	}
}

// Recovery returns a middleware that captures panics.
func Recovery(errorHandler *apperrors.Handler) Middleware {
	return RecoveryWithConfig(DefaultRecoveryConfig(errorHandler))
}

// RecoveryWithConfig returns a recovery middleware with custom config.
func RecoveryWithConfig(config *RecoveryConfig) Middleware {
	if config == nil {
		config = DefaultRecoveryConfig(nil)
	}

	if config.Logger == nil {
		config.Logger = logging.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := debug.Stack()

					log := logging.FromContext(r.Context())
					if log == nil {
						log = config.Logger
					}

					logPanic(log, r, rec, stack, config.PrintStack)

					if config.OnPanic != nil {
						config.OnPanic(r, rec)
					}

					err := apperrors.Internal(nil, "internal error").
						WithField("panic", fmt.Sprint(rec))

					if config.ErrorHandler != nil {
						config.ErrorHandler.Handle(w, r, err)
					} else {
						http.Error(w, "internal server error", http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// logPanic logs the panic to the logs.
func logPanic(log *logging.Logger, r *http.Request, rec any, stack []byte, printStack bool) {
	attrs := []any{
		"panic", fmt.Sprint(rec),
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	}

	if requestID := RequestID(r.Context()); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}

	if printStack {
		attrs = append(attrs, "stack", string(stack))
	}

	log.Error("panic recovered", attrs...)
}

// SafeHandler wrapper that never panics.
func SafeHandler(h http.Handler, errorHandler *apperrors.Handler) http.Handler {
	return Recovery(errorHandler)(h)
}

// MustNotPanic executes a function and panics if it panics (for tests).
func MustNotPanic(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			panic(fmt.Sprintf("unexpected panic: %v\n%s", rec, debug.Stack()))
		}
	}()
	fn()
}

// CatchPanic executes a function and returns the panic as an error.
func CatchPanic(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	fn()
	return nil
}
