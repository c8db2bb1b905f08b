package token

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"golang.org/x/oauth2"
)

func stubTokenEndpoint(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if err := r.ParseForm(); err == nil {
			if g := r.Form.Get("grant_type"); g != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", g)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testCred(tokenURL string) *models.EmailCredential {
	return &models.EmailCredential{
		UserID:        "u1",
		Provider:      "google",
		AccessToken:   "stale",
		RefreshToken:  "r1",
		TokenEndpoint: tokenURL,
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
	}
}

func TestEnsureValidAccessToken_Refreshes(t *testing.T) {
	srv, calls := stubTokenEndpoint(t, http.StatusOK,
		`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
	r := NewRefresher(5 * time.Second)
	r.HTTPClient = srv.Client()

	cred := testCred(srv.URL)
	tok, err := r.EnsureValidAccessToken(context.Background(), cred)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if tok.AccessToken != "fresh" {
		t.Fatalf("expected fresh access token, got %q", tok.AccessToken)
	}
	if *calls != 1 {
		t.Fatalf("expected exactly one refresh call even with a stored access token, got %d", *calls)
	}
}

func TestEnsureValidAccessToken_NoRefreshToken(t *testing.T) {
	srv, calls := stubTokenEndpoint(t, http.StatusOK, `{}`)
	r := NewRefresher(5 * time.Second)
	r.HTTPClient = srv.Client()

	cred := testCred(srv.URL)
	cred.RefreshToken = ""
	_, err := r.EnsureValidAccessToken(context.Background(), cred)
	if kind := apperr.KindOf(err); kind != apperr.KindNoRefreshToken {
		t.Fatalf("expected %s, got %v", apperr.KindNoRefreshToken, err)
	}
	if *calls != 0 {
		t.Fatalf("no network call may be attempted without a refresh token")
	}
}

func TestEnsureValidAccessToken_PermanentRejection(t *testing.T) {
	srv, _ := stubTokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	r := NewRefresher(5 * time.Second)
	r.HTTPClient = srv.Client()

	_, err := r.EnsureValidAccessToken(context.Background(), testCred(srv.URL))
	if kind := apperr.KindOf(err); kind != apperr.KindRefreshFailed {
		t.Fatalf("expected %s, got %v", apperr.KindRefreshFailed, err)
	}
}

func TestEnsureValidAccessToken_TransientFailure(t *testing.T) {
	srv, _ := stubTokenEndpoint(t, http.StatusBadGateway, `upstream temporarily unavailable`)
	r := NewRefresher(5 * time.Second)
	r.HTTPClient = srv.Client()

	_, err := r.EnsureValidAccessToken(context.Background(), testCred(srv.URL))
	if kind := apperr.KindOf(err); kind != apperr.KindTransient {
		t.Fatalf("expected %s, got %v", apperr.KindTransient, err)
	}
}

func TestRefreshedFields(t *testing.T) {
	cred := &models.EmailCredential{RefreshToken: "r1"}
	expiry := time.Now().Add(time.Hour)

	fields := RefreshedFields(cred, &oauth2.Token{AccessToken: "a2", Expiry: expiry})
	if fields["access_token"] != "a2" {
		t.Fatalf("expected access token column, got %v", fields)
	}
	if _, ok := fields["refresh_token"]; ok {
		t.Fatalf("refresh token must not be re-supplied when unchanged")
	}

	fields = RefreshedFields(cred, &oauth2.Token{AccessToken: "a2", RefreshToken: "r2", Expiry: expiry})
	if fields["refresh_token"] != "r2" {
		t.Fatalf("rotated refresh token must be persisted, got %v", fields)
	}
}

func TestIsPermanentRefreshError(t *testing.T) {
	tests := []struct {
		name      string
		errText   string
		permanent bool
	}{
		{name: "invalid grant", errText: "oauth2: cannot fetch token: 400 Bad Request {\"error\":\"invalid_grant\"}", permanent: true},
		{name: "revoked", errText: "token has been expired or revoked", permanent: true},
		{name: "unauthorized client", errText: "unauthorized_client", permanent: true},
		{name: "network", errText: "dial tcp: connection refused", permanent: false},
		{name: "server error", errText: "oauth2: cannot fetch token: 503 Service Unavailable", permanent: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPermanentRefreshError(fmt.Errorf("%s", tt.errText)); got != tt.permanent {
				t.Fatalf("isPermanentRefreshError(%q) = %v, want %v", tt.errText, got, tt.permanent)
			}
		})
	}
}
