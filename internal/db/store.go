package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"gorm.io/gorm"
)

// CredentialStore persists one EmailCredential per (user, provider) pair.
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore wraps a gorm handle.
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Get returns the stored credential for the pair, or a no_email_config error.
func (s *CredentialStore) Get(ctx context.Context, userID, provider string) (*models.EmailCredential, error) {
	var cred models.EmailCredential
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.KindNotFound, "no credential stored for user "+userID, err)
		}
		return nil, apperr.E(apperr.KindStoreWriteFailed, "credential lookup failed", err)
	}
	return &cred, nil
}

// Upsert writes the full record keyed on (UserID, Provider), preserving the
// row ID of an existing pair. Last write wins.
func (s *CredentialStore) Upsert(ctx context.Context, cred *models.EmailCredential) error {
	var existing models.EmailCredential
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", cred.UserID, cred.Provider).
		First(&existing).Error
	if err == nil {
		cred.ID = existing.ID
		cred.CreatedAt = existing.CreatedAt
	} else {
		cred.ID = uuid.New().String()
	}

	if err := s.db.WithContext(ctx).Save(cred).Error; err != nil {
		return apperr.E(apperr.KindStoreWriteFailed, "credential upsert failed", err)
	}
	return nil
}

// UpdateFields merges the given columns into the stored record. Columns not
// supplied survive untouched; the refresh engine relies on this to rotate
// access_token without re-supplying refresh_token.
func (s *CredentialStore) UpdateFields(ctx context.Context, userID, provider string, fields map[string]any) error {
	res := s.db.WithContext(ctx).
		Model(&models.EmailCredential{}).
		Where("user_id = ? AND provider = ?", userID, provider).
		Updates(fields)
	if res.Error != nil {
		return apperr.E(apperr.KindStoreWriteFailed, "credential update failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.E(apperr.KindNotFound, "no credential stored for user "+userID, nil)
	}
	return nil
}

// LogSend records one dispatch attempt for the history view.
func (s *CredentialStore) LogSend(ctx context.Context, entry *models.SendLog) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}
	// History is best-effort; a failed insert never fails the send.
	s.db.WithContext(ctx).Create(entry)
}

// RecentSends returns the newest dispatch attempts, newest first.
func (s *CredentialStore) RecentSends(ctx context.Context, limit int) ([]models.SendLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []models.SendLog
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// SendStats aggregates dispatch history counters.
func (s *CredentialStore) SendStats(ctx context.Context) (*models.SendStats, error) {
	var stats models.SendStats
	if err := s.db.WithContext(ctx).Model(&models.SendLog{}).Count(&stats.TotalSends).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.SendLog{}).Where("error = ''").Count(&stats.SuccessCount).Error; err != nil {
		return nil, err
	}
	stats.ErrorCount = stats.TotalSends - stats.SuccessCount
	return &stats, nil
}
