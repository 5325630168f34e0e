package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// TokenHeader carries a rotated access token back to the client.
const TokenHeader = "X-FF-Token"

// CORS returns middleware that applies the configured origin policy. A
// wildcard origin disables credentialed requests.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	credentials := true
	for _, o := range origins {
		if o == "*" {
			credentials = false
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TokenHeader, CartSessionHeader, requestIDHeader},
		ExposedHeaders:   []string{TokenHeader, requestIDHeader},
		AllowCredentials: credentials,
		MaxAge:           300,
	}).Handler
}
