package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/edgerun/edgerun/logging"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// LoggerConfig configures the logger middleware.
type LoggerConfig struct {
	Logger      *logging.Logger
	SkipPaths   []string
	SkipStatus  []int
	MaxBodySize int
}

// DefaultLoggerConfig returns a default configuration.
func DefaultLoggerConfig(log *logging.Logger) *LoggerConfig {
	return &LoggerConfig{
		Logger:      log,
		SkipPaths:   []string{"/health", "/metrics", "/favicon.ico"},
		SkipStatus:  []int{},
		MaxBodySize: 1024,
	}
}

// Logger returns a middleware that logs HTTP requests, except requests to
// the default skip paths (/health, /metrics, /favicon.ico).
func Logger(log *logging.Logger) Middleware {
	return LoggerWithConfig(DefaultLoggerConfig(log))
}

// LoggerWithConfig returns a logger middleware with custom config. Paths in
// config.SkipPaths bypass the middleware entirely via SkipPaths, rather than
// branching on the path inline.
func LoggerWithConfig(config *LoggerConfig) Middleware {
	if config == nil {
		config = DefaultLoggerConfig(logging.Default())
	}

	if config.Logger == nil {
		config.Logger = logging.Default()
	}

	return SkipPaths(config.SkipPaths, logRequestMiddleware(config))
}

func logRequestMiddleware(config *LoggerConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			reqLogger := config.Logger.With(
				"request_id", requestID,
				"host", r.Host,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", getClientIP(r),
			)

			if ua := r.Header.Get("User-Agent"); ua != "" {
				reqLogger = reqLogger.With("user_agent", ua)
			}

			ctx := logging.WithContext(r.Context(), reqLogger)
			ctx = withRequestID(ctx, requestID)

			rw := NewResponseWriter(w)
			rw.Header().Set("X-Request-Id", requestID)

			start := time.Now()

			next.ServeHTTP(rw, r.WithContext(ctx))

			duration := time.Since(start)

			if lo.Contains(config.SkipStatus, rw.Status()) {
				return
			}

			logRequest(reqLogger, r, rw, duration)
		})
	}
}

// logRequest logs the request details.
func logRequest(log *logging.Logger, r *http.Request, rw *responseWriter, duration time.Duration) {
	attrs := []any{
		"size", rw.Size(),
		"duration", duration.String(),
	}

	if r.URL.RawQuery != "" {
		attrs = append(attrs, "query", r.URL.RawQuery)
	}

	if referer := r.Header.Get("Referer"); referer != "" {
		attrs = append(attrs, "referer", referer)
	}

	msg := "http request"

	switch {
	case rw.Status() >= 500:
		log.Error(msg, attrs...)
	case rw.Status() >= 400:
		log.Warn(msg, attrs...)
	default:
		log.Info(msg, attrs...)
	}
}

// getClientIP retrieves the client IP address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := lo.Filter(splitAndTrim(xff, ","), func(ip string, _ int) bool {
			return ip != ""
		})

		if len(ips) > 0 {
			return ips[0]
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}

// splitAndTrim splits a string and trims spaces.
func splitAndTrim(s, sep string) []string {
	var result []string
	var current string

	for _, char := range s {
		if string(char) == sep {
			if current != "" {
				result = append(result, current)
				current = ""
			}
		} else if char != ' ' && char != '\t' {
			current += string(char)
		}
	}

	if current != "" {
		result = append(result, current)
	}

	return result
}

type contextKey string

const requestIDKey contextKey = "request_id"

// withRequestID adds the request ID to the context.
func withRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetRequestID is an alias for RequestID.
func GetRequestID(r *http.Request) string {
	return RequestID(r.Context())
}

// LoggerFromRequest retrieves the logger from the request.
func LoggerFromRequest(r *http.Request) *logging.Logger {
	return logging.FromContext(r.Context())
}
