// Package apperrors is the single error currency of the core: every
// component returns a *AppError carrying the error kind (spec's taxonomy),
// an HTTP status, and enough context to log or render it.
package apperrors

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"
)

// Kind names one of the error taxonomy entries the dispatch layer knows how
// to map to an HTTP status. It is a plain string, not an iota, so it reads
// directly in logs.
type Kind string

const (
	KindConfig           Kind = "CONFIG_ERROR"
	KindHostNotFound     Kind = "HOST_NOT_FOUND"
	KindPathNotFound     Kind = "PATH_NOT_FOUND"
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindScriptLoad       Kind = "SCRIPT_LOAD_ERROR"
	KindScriptRuntime    Kind = "SCRIPT_RUNTIME_ERROR"
	KindMarshal          Kind = "MARSHAL_ERROR"
	KindIO               Kind = "IO_ERROR"
)

// AppError is a structured application error.
type AppError struct {
	Code       Kind
	Message    string
	StatusCode int
	Err        error
	Fields     map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, if any.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField attaches one piece of structured context and returns e.
func (e *AppError) WithField(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError with no wrapped cause.
func New(code Kind, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code Kind, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode, Err: err}
}

// HostNotFound builds the 404 raised when no tenant matches a host.
func HostNotFound(host string) *AppError {
	return New(KindHostNotFound, fmt.Sprintf("HostNotFound: %s", host), http.StatusNotFound).
		WithField("host", host)
}

// PathNotFound builds the 404 raised when a tenant's router has no match.
func PathNotFound(path string) *AppError {
	return New(KindPathNotFound, fmt.Sprintf("PathNotFound: %s", path), http.StatusNotFound).
		WithField("path", path)
}

// MethodNotAllowed builds the 405 raised when the path matches but the
// method doesn't.
func MethodNotAllowed(method string) *AppError {
	return New(KindMethodNotAllowed, fmt.Sprintf("MethodNotAllowed: %s", method), http.StatusMethodNotAllowed).
		WithField("method", method)
}

// Config builds a ConfigError for malformed routing configuration.
func Config(message string) *AppError {
	return New(KindConfig, message, http.StatusInternalServerError)
}

// Configf is Config with fmt.Sprintf formatting.
func Configf(format string, args ...any) *AppError {
	return Config(fmt.Sprintf(format, args...))
}

// ScriptLoad builds the error raised when a script module fails to evaluate.
func ScriptLoad(err error) *AppError {
	return Wrap(err, KindScriptLoad, "failed to load script module", http.StatusInternalServerError)
}

// ScriptRuntime builds the error raised when a handler is missing, throws,
// or rejects.
func ScriptRuntime(message string) *AppError {
	return New(KindScriptRuntime, message, http.StatusInternalServerError)
}

// Marshal builds the error raised when a guest response record is malformed.
func Marshal(message string) *AppError {
	return New(KindMarshal, message, http.StatusInternalServerError)
}

// IO builds an operator-facing error for file/port/watcher failures. It is
// never surfaced as an HTTP response.
func IO(err error, message string) *AppError {
	return Wrap(err, KindIO, message, 0)
}

// Internal builds a generic 500, used by panic recovery when the failing
// component doesn't map to one of the named taxonomy kinds.
func Internal(err error, message string) *AppError {
	return Wrap(err, KindScriptRuntime, message, http.StatusInternalServerError)
}

// ToAppError converts any error into an AppError, defaulting unknown errors
// to a 500 internal error.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, KindScriptRuntime, "internal error", http.StatusInternalServerError)
}

// HasKind reports whether err is an AppError of the given kind.
func HasKind(err error, kind Kind) bool {
	if appErr := ToAppError(err); appErr != nil {
		return appErr.Code == kind
	}
	return false
}

// ErrorList aggregates multiple AppErrors into one error value. (router.Build
// combines its configuration violations with multierr, not with ErrorList.)
type ErrorList struct {
	Errors []*AppError
}

// Error implements the error interface, joining every message.
func (e *ErrorList) Error() string {
	messages := lo.Map(e.Errors, func(err *AppError, _ int) string {
		return err.Message
	})
	return fmt.Sprintf("%d configuration errors: %v", len(messages), messages)
}

// Add appends err to the list.
func (e *ErrorList) Add(err *AppError) {
	e.Errors = append(e.Errors, err)
}

// HasErrors reports whether any error was added.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}
