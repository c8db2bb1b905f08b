package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders the structured error payload. Callers see the kind and
// a human-readable detail, never a bare 500 page.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	detail := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		detail = ae.Detail
	}

	if reqID := logging.GetRequestID(r.Context()); reqID != "" {
		log.Printf("❌ [%s] %s: %v", reqID, r.URL.Path, err)
	} else {
		log.Printf("❌ %s: %v", r.URL.Path, err)
	}

	writeJSON(w, apperr.HTTPStatus(kind), map[string]string{
		"error":  string(kind),
		"detail": detail,
	})
}
