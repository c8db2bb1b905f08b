package models

import "time"

// EmailCredential stores the OAuth token bundle for one user/provider pair.
// Exactly one row exists per (UserID, Provider); writes are upserts on that pair.
type EmailCredential struct {
	ID           string `gorm:"primaryKey"` // UUID
	UserID       string `gorm:"uniqueIndex:idx_user_provider;not null"`
	Provider     string `gorm:"uniqueIndex:idx_user_provider;not null"` // e.g., "google"
	AccessToken  string
	RefreshToken string // long-lived; preserved across updates unless the provider rotates it
	TokenEndpoint string
	ClientID     string
	ClientSecret string
	Scopes       string    // JSON array of granted scopes
	ExpiresAt    time.Time // zero value means unknown: assume expired before use
	AccountEmail string    // best-effort resolved address, may be empty
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sendable reports whether the record can ever mint a new access token.
// A row without a refresh token is terminal: only a fresh interactive
// OAuth flow can recover it.
func (c *EmailCredential) Sendable() bool {
	return c.RefreshToken != ""
}
