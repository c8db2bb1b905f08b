package google

import (
	"encoding/json"

	"github.com/pysugar/outreach-mailer/internal/config"
	"golang.org/x/oauth2"
)

// Provider is the fixed issuer literal stored with every credential record.
const Provider = "google"

// Scopes requested during the interactive flow. Mail-send capability is the
// minimum required for dispatch to succeed.
var Scopes = []string{
	"https://www.googleapis.com/auth/gmail.send",
	"https://mail.google.com/",
	"https://www.googleapis.com/auth/userinfo.email",
}

// OAuthConfig returns the OAuth2 config for the Gmail connect flow.
// Credentials come from the app config only; there are no built-in defaults.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.GoogleAuthURL,
			TokenURL: cfg.GoogleTokenURL,
		},
	}
}

// ScopesJSON returns the scope set in its stored form.
func ScopesJSON() string {
	b, _ := json.Marshal(Scopes)
	return string(b)
}
