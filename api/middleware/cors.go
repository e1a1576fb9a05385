package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/pizzeria/pkg/types"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // storefront dev server
	"http://localhost:3131",
	"http://127.0.0.1:3000",
}

// CORS returns middleware that lets the storefront pages call the API.
// Extra origins are appended to the local defaults.
func CORS(extra ...string) func(http.Handler) http.Handler {
	origins := append(append([]string{}, defaultCORSOrigins...), extra...)
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", types.RequestIDHeader, SessionIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{SessionIDHeader, types.RequestIDHeader, "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
