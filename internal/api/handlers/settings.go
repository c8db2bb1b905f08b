package handlers

import (
	"net/http"

	"github.com/pysugar/outreach-mailer/internal/db"
	"gorm.io/gorm"
)

// GetAPIKeyHandler returns the current service API key
// GET /api/config/apikey
func GetAPIKeyHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"api_key": db.GetAPIKey(database),
		})
	}
}

// RegenerateAPIKeyHandler rotates the service API key
// POST /api/config/apikey/regenerate
func RegenerateAPIKeyHandler(database *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"api_key": db.RegenerateAPIKey(database),
		})
	}
}
