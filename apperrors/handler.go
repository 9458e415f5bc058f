package apperrors

import (
	"fmt"
	"net/http"
)

// Logger is the minimal logging surface Handler needs, satisfied by
// *logging.Logger without importing it directly (keeps apperrors free of a
// dependency on the logging package).
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Handler turns an error into an HTTP response: it logs the error and
// writes a short plain-text body carrying the status code and message. The
// runtime never renders HTML error pages.
type Handler struct {
	logger    Logger
	showStack bool
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the logger used to record handled errors.
func WithLogger(logger Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithShowStack includes the wrapped error's message in the response body
// (development only; never enable in production).
func WithShowStack(show bool) HandlerOption {
	return func(h *Handler) { h.showStack = show }
}

// NewHandler builds a Handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	h := &Handler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle converts err to an AppError, logs it, and writes the response.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	appErr := ToAppError(err)

	h.logError(r, appErr)

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)

	body := appErr.Message
	if h.showStack && appErr.Err != nil {
		body = fmt.Sprintf("%s: %v", body, appErr.Err)
	}
	fmt.Fprintln(w, body)
}

// HandleFunc adapts Handle to wrap a handler function in panic recovery.
func (h *Handler) HandleFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer h.recoverPanic(w, r)
		next(w, r)
	}
}

// Middleware wraps next with panic recovery and AppError handling.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer h.recoverPanic(w, r)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recoverPanic(w http.ResponseWriter, r *http.Request) {
	if rec := recover(); rec != nil {
		err := New(KindScriptRuntime, "internal error", http.StatusInternalServerError).
			WithField("panic", fmt.Sprint(rec))
		h.Handle(w, r, err)
	}
}

func (h *Handler) logError(r *http.Request, err *AppError) {
	if h.logger == nil {
		return
	}

	args := []any{"code", string(err.Code), "status", err.StatusCode}
	for k, v := range err.Fields {
		args = append(args, k, v)
	}
	if r != nil {
		args = append(args, "method", r.Method, "path", r.URL.Path)
	}

	if err.StatusCode >= 500 || err.StatusCode == 0 {
		h.logger.Error(err.Message, args...)
	} else {
		h.logger.Warn(err.Message, args...)
	}
}

var defaultHandler = NewHandler()

// SetDefaultHandler replaces the package-level default Handler.
func SetDefaultHandler(h *Handler) {
	defaultHandler = h
}

// Handle delegates to the package-level default Handler.
func Handle(w http.ResponseWriter, r *http.Request, err error) {
	defaultHandler.Handle(w, r, err)
}

// NotFound returns a handler that always responds 404.
func NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Handle(w, r, PathNotFound(r.URL.Path))
	}
}

// MethodNotAllowedHandler returns a handler that always responds 405.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Handle(w, r, MethodNotAllowed(r.Method))
	}
}
