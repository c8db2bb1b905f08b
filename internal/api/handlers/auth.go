package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/auth/google"
	"github.com/pysugar/outreach-mailer/internal/config"
)

// StartHandler begins the Gmail connect flow for the given user.
// GET /auth/google/start?user_id=<id>
func StartHandler(flow *google.Flow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		consentURL, err := flow.BeginAuthorization(r.URL.Query().Get("user_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, consentURL, http.StatusTemporaryRedirect)
	}
}

// CallbackHandler completes the flow when Google redirects back.
// OAuth failures redirect to the front-end with a status flag instead of
// raising an error page; only a missing code is answered directly.
func CallbackHandler(flow *google.Flow, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		_, err := flow.CompleteAuthorization(r.Context(), code, state)
		switch {
		case err == nil:
			http.Redirect(w, r, frontendRedirect(cfg, "connected=1"), http.StatusTemporaryRedirect)
		case apperr.IsKind(err, apperr.KindBadRequest):
			writeError(w, r, err)
		case errors.Is(err, google.ErrUnassociated):
			log.Printf("⚠️ OAuth callback without a usable state token: %v", err)
			http.Redirect(w, r, frontendRedirect(cfg, "connected=0&reason=missing_state"), http.StatusTemporaryRedirect)
		default:
			log.Printf("❌ OAuth callback failed: %v", err)
			reason := url.QueryEscape(string(apperr.KindOf(err)))
			http.Redirect(w, r, frontendRedirect(cfg, "connected=0&reason="+reason), http.StatusTemporaryRedirect)
		}
	}
}

func frontendRedirect(cfg *config.Config, query string) string {
	sep := "?"
	if strings.Contains(cfg.FrontendAfterConnect, "?") {
		sep = "&"
	}
	return cfg.FrontendAfterConnect + sep + query
}
