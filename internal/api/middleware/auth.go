package middleware

import (
	"net/http"
	"strings"

	"github.com/pysugar/outreach-mailer/internal/db"
	"gorm.io/gorm"
)

// APIKeyAuth middleware validates the service API key from the request.
// The key lives in the settings table and is generated on first run.
func APIKeyAuth(database *gorm.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			expectedKey := db.GetAPIKey(database)
			if expectedKey == "" {
				// No API key configured, allow all requests (first-run scenario)
				next.ServeHTTP(w, r)
				return
			}

			// Authorization: Bearer <key>
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				if key, ok := strings.CutPrefix(authHeader, "Bearer "); ok && key == expectedKey {
					next.ServeHTTP(w, r)
					return
				}
			}

			// x-api-key header (alternative)
			if r.Header.Get("x-api-key") == expectedKey {
				next.ServeHTTP(w, r)
				return
			}

			// 'key' query parameter
			if queryKey := r.URL.Query().Get("key"); queryKey != "" && queryKey == expectedKey {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized", "detail": "invalid API key"}`))
		})
	}
}
