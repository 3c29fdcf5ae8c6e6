package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware applying the API's allowed origin policy. Origins
// come from configuration so deployments can add their dashboard domains.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id", "X-Payment-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
