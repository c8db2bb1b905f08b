package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/mailer"
)

type sendRequest struct {
	UserID  string `json:"user_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmailHandler dispatches a message through the caller's connected
// Gmail account. Recipient/subject/body are passed through unvalidated;
// the provider rejects malformed input.
// POST /api/send-email
func SendEmailHandler(dispatcher *mailer.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.E(apperr.KindBadRequest, "invalid JSON body", err))
			return
		}
		if req.UserID == "" {
			writeError(w, r, apperr.E(apperr.KindBadRequest, "user_id missing", nil))
			return
		}

		msgID, err := dispatcher.Send(r.Context(), req.UserID, req.To, req.Subject, req.Body)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":     "sent",
			"message_id": msgID,
		})
	}
}
