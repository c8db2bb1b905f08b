// Package mailer submits composed messages through the connected Gmail
// account, refreshing the stored credential on the way.
package mailer

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/pysugar/outreach-mailer/internal/apperr"
	authgoogle "github.com/pysugar/outreach-mailer/internal/auth/google"
	"github.com/pysugar/outreach-mailer/internal/auth/token"
	"github.com/pysugar/outreach-mailer/internal/db"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Dispatcher orchestrates fetch → refresh → send → deferred token update.
type Dispatcher struct {
	store     *db.CredentialStore
	refresher *token.Refresher
	timeout   time.Duration

	// Endpoint overrides the Gmail API base URL, used by tests.
	Endpoint string
}

// NewDispatcher wires the dispatch service.
func NewDispatcher(store *db.CredentialStore, refresher *token.Refresher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{store: store, refresher: refresher, timeout: timeout}
}

// Send validates nothing about the caller-supplied strings; malformed input
// is rejected by the provider and surfaced as send_failed. On success it
// returns the provider-assigned message id.
func (d *Dispatcher) Send(ctx context.Context, userID, to, subject, body string) (string, error) {
	cred, err := d.store.Get(ctx, userID, authgoogle.Provider)
	if err != nil {
		return "", err
	}

	tok, err := d.refresher.EnsureValidAccessToken(ctx, cred)
	if err != nil {
		// No send attempted; the stored record stays untouched.
		return "", err
	}

	started := time.Now()
	raw := base64.URLEncoding.EncodeToString(BuildMIME(to, subject, body))
	msgID, sendErr := d.submit(ctx, tok, raw)

	// The refresh succeeded independently of the send, so persist the
	// rotated token either way instead of wasting it.
	if err := d.store.UpdateFields(ctx, cred.UserID, cred.Provider, token.RefreshedFields(cred, tok)); err != nil {
		log.Printf("⚠️ Failed to persist refreshed token for user %s: %v", cred.UserID, err)
	}

	entry := &models.SendLog{
		UserID:       userID,
		AccountEmail: cred.AccountEmail,
		Recipient:    to,
		Subject:      subject,
		MessageID:    msgID,
		Duration:     time.Since(started).Milliseconds(),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	d.store.LogSend(ctx, entry)

	if sendErr != nil {
		return "", sendErr
	}
	log.Printf("📧 Sent message %s for user %s to %s", msgID, userID, to)
	return msgID, nil
}

func (d *Dispatcher) submit(ctx context.Context, tok *oauth2.Token, raw string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(tok)),
	}
	if d.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(d.Endpoint))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return "", apperr.E(apperr.KindTransient, "building gmail client", err)
	}

	res, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 {
			return "", apperr.E(apperr.KindSendRejected, gerr.Message, err)
		}
		return "", apperr.E(apperr.KindTransient, "gmail send did not complete", err)
	}
	return res.Id, nil
}
