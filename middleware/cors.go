package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	AllowedOrigins     []string
	AllowedMethods     []string
	AllowedHeaders     []string
	ExposedHeaders     []string
	AllowCredentials   bool
	MaxAge             int
	OptionsPassthrough bool
}

// DefaultCORSConfig returns a permissive CORS config (dev).
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           3600,
	}
}

// ProductionCORSConfig returns a strict CORS config (prod).
func ProductionCORSConfig(allowedOrigins []string) *CORSConfig {
	return &CORSConfig{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           7200,
	}
}

// CORS returns a CORS middleware with default config.
func CORS() Middleware {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a CORS middleware backed by rs/cors, translating
// CORSConfig's fields (including "*.example.com" wildcard subdomain
// patterns) into its option struct.
func CORSWithConfig(config *CORSConfig) Middleware {
	if config == nil {
		config = DefaultCORSConfig()
	}

	c := cors.New(cors.Options{
		AllowedOrigins:     normalizeList(config.AllowedOrigins),
		AllowedMethods:     normalizeList(config.AllowedMethods),
		AllowedHeaders:     normalizeList(config.AllowedHeaders),
		ExposedHeaders:     normalizeList(config.ExposedHeaders),
		AllowCredentials:   config.AllowCredentials,
		MaxAge:             config.MaxAge,
		OptionsPassthrough: config.OptionsPassthrough,
	})

	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// AllowOrigins is a helper to create a simple CORS config.
func AllowOrigins(origins ...string) Middleware {
	return CORSWithConfig(&CORSConfig{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3600,
	})
}

// AllowAll is a helper to allow all origins (dev only).
func AllowAll() Middleware {
	return CORS()
}
