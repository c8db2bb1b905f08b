package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/compose"
)

type generateRequest struct {
	ProjectType     string `json:"project_type"`
	CustomerMessage string `json:"customer_message"`
	PostText        string `json:"post_text"` // legacy alias for customer_message
	Email           string `json:"email"`
}

// GenerateEmailHandler drafts an outreach email from the caller's context.
// POST /api/generate-email
func GenerateEmailHandler(generator *compose.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.E(apperr.KindBadRequest, "invalid JSON body", err))
			return
		}

		message := req.CustomerMessage
		if message == "" {
			message = req.PostText
		}

		draft, err := generator.Generate(r.Context(), compose.Request{
			ProjectType:     req.ProjectType,
			CustomerMessage: message,
			TargetEmail:     req.Email,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"email": draft})
	}
}
