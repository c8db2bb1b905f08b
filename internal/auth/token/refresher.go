// Package token turns a possibly-stale stored credential into a valid
// access token by refreshing against the provider's token endpoint.
package token

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// Refresher mints fresh access tokens from stored refresh tokens.
type Refresher struct {
	Timeout time.Duration

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// NewRefresher returns a refresher with the given per-call timeout.
func NewRefresher(timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Refresher{Timeout: timeout}
}

// EnsureValidAccessToken refreshes unconditionally rather than checking the
// stored expiry first: one extra round trip per send buys tolerance of clock
// skew and of records with no expiry at all. The refresh material captured at
// exchange time (client id/secret, token endpoint) is presented as-is.
//
// The caller persists the result after the downstream send attempt via
// RefreshedFields; nothing is written here.
func (r *Refresher) EnsureValidAccessToken(ctx context.Context, cred *models.EmailCredential) (*oauth2.Token, error) {
	if cred.RefreshToken == "" {
		return nil, apperr.E(apperr.KindNoRefreshToken, "credential has no refresh token, reconnect required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	if r.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.HTTPClient)
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: cred.TokenEndpoint},
	}

	// Seeding the source with only the refresh token forces a refresh even
	// when the stored access token still looks usable.
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		if isPermanentRefreshError(err) {
			return nil, apperr.E(apperr.KindRefreshFailed, "provider rejected refresh token, re-authorization required", err)
		}
		return nil, apperr.E(apperr.KindTransient, "token refresh did not complete", err)
	}

	return tok, nil
}

// RefreshedFields returns the column map the store should merge after a
// refresh. The refresh token is only re-supplied when the provider rotated
// it; otherwise the stored value survives untouched.
func RefreshedFields(cred *models.EmailCredential, tok *oauth2.Token) map[string]any {
	fields := map[string]any{
		"access_token": tok.AccessToken,
		"expires_at":   tok.Expiry,
	}
	if tok.RefreshToken != "" && tok.RefreshToken != cred.RefreshToken {
		fields["refresh_token"] = tok.RefreshToken
	}
	return fields
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
