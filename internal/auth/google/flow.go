package google

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/config"
	"github.com/pysugar/outreach-mailer/internal/db"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"golang.org/x/oauth2"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrUnassociated marks a callback whose state token could not be tied to a
// user. Callers redirect to a recognizable failure state instead of failing
// the HTTP interaction.
var ErrUnassociated = errors.New("callback not associated with a user")

// Flow manages the interactive OAuth round trip with Google.
type Flow struct {
	cfg   *config.Config
	store *db.CredentialStore

	// UserinfoURL and HTTPClient override the provider endpoints, used by
	// tests.
	UserinfoURL string
	HTTPClient  *http.Client
}

// NewFlow wires the flow manager.
func NewFlow(cfg *config.Config, store *db.CredentialStore) *Flow {
	return &Flow{cfg: cfg, store: store, UserinfoURL: defaultUserinfoURL}
}

// BeginAuthorization builds the consent URL for the given user. Offline
// access plus forced approval makes Google reissue a refresh token even for
// users who connected before; previously granted scopes stay included.
func (f *Flow) BeginAuthorization(userID string) (string, error) {
	if userID == "" {
		return "", apperr.E(apperr.KindBadRequest, "missing_user_id", nil)
	}

	state, err := EncodeState(f.cfg.StateSecret, userID)
	if err != nil {
		return "", apperr.E(apperr.KindBadRequest, "encoding state token", err)
	}

	url := OAuthConfig(f.cfg).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
	return url, nil
}

// CompleteAuthorization exchanges the authorization code, resolves the
// account identity best-effort, and upserts the credential record.
func (f *Flow) CompleteAuthorization(ctx context.Context, code, state string) (*models.EmailCredential, error) {
	if code == "" {
		return nil, apperr.E(apperr.KindBadRequest, "missing_code", nil)
	}

	// Without a user id there is nothing to key the record on. Skip the
	// exchange entirely so the single-use code stays unburned.
	userID, err := DecodeState(f.cfg.StateSecret, state)
	if err != nil {
		return nil, errors.Join(ErrUnassociated, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.ProviderTimeout)
	defer cancel()
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}

	oc := OAuthConfig(f.cfg)
	tok, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.E(apperr.KindAuthExchangeFailed, "code exchange rejected", err)
	}

	email, ok := f.resolveAccountEmail(ctx, oc.Client(ctx, tok))
	if !ok {
		log.Printf("⚠️ Could not resolve account email for user %s, storing without it", userID)
	}

	cred := &models.EmailCredential{
		UserID:        userID,
		Provider:      Provider,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		TokenEndpoint: f.cfg.GoogleTokenURL,
		ClientID:      f.cfg.GoogleClientID,
		ClientSecret:  f.cfg.GoogleClientSecret,
		Scopes:        ScopesJSON(),
		ExpiresAt:     tok.Expiry,
		AccountEmail:  email,
	}

	if err := f.store.Upsert(ctx, cred); err != nil {
		// The exchanged tokens are not queued for retry; the user must
		// restart the interactive flow.
		return nil, err
	}

	log.Printf("✅ Connected Gmail account %s for user %s", email, userID)
	return cred, nil
}

// resolveAccountEmail fetches the connected account's address. Failure is
// tolerated: the record is stored without an email.
func (f *Flow) resolveAccountEmail(ctx context.Context, client *http.Client) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.UserinfoURL, nil)
	if err != nil {
		return "", false
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		return "", false
	}
	return info.Email, true
}
