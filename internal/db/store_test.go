package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/outreach-mailer/internal/apperr"
	"github.com/pysugar/outreach-mailer/internal/db/models"
	"gorm.io/gorm"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&models.EmailCredential{}, &models.Setting{}, &models.SendLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestGet_MissingRecordIsNotFound(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))

	_, err := store.Get(context.Background(), "u2", "google")
	if err == nil {
		t.Fatalf("expected error for missing record")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindNotFound {
		t.Fatalf("expected %s, got %s", apperr.KindNotFound, kind)
	}
}

func TestUpsert_KeyedOnUserProvider(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))
	ctx := context.Background()

	first := &models.EmailCredential{
		UserID:       "u1",
		Provider:     "google",
		AccessToken:  "a1",
		RefreshToken: "r1",
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &models.EmailCredential{
		UserID:       "u1",
		Provider:     "google",
		AccessToken:  "a2",
		RefreshToken: "r2",
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("upsert must reuse the existing row, got id %s want %s", got.ID, first.ID)
	}
	if got.AccessToken != "a2" || got.RefreshToken != "r2" {
		t.Fatalf("upsert must be last-write-wins, got %+v", got)
	}

	var count int64
	store.db.Model(&models.EmailCredential{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row per (user, provider), got %d", count)
	}
}

func TestUpdateFields_PreservesRefreshToken(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))
	ctx := context.Background()

	cred := &models.EmailCredential{
		UserID:       "u1",
		Provider:     "google",
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Upsert(ctx, cred); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	newExpiry := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	err := store.UpdateFields(ctx, "u1", "google", map[string]any{
		"access_token": "a2",
		"expires_at":   newExpiry,
	})
	if err != nil {
		t.Fatalf("update fields: %v", err)
	}

	got, err := store.Get(ctx, "u1", "google")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "a2" {
		t.Fatalf("expected rotated access token, got %s", got.AccessToken)
	}
	if got.RefreshToken != "r1" {
		t.Fatalf("refresh token must survive partial updates, got %q", got.RefreshToken)
	}
	if !got.ExpiresAt.UTC().Truncate(time.Second).Equal(newExpiry) {
		t.Fatalf("expected expiry %v, got %v", newExpiry, got.ExpiresAt)
	}
}

func TestUpdateFields_MissingRowIsNotFound(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))

	err := store.UpdateFields(context.Background(), "ghost", "google", map[string]any{"access_token": "x"})
	if kind := apperr.KindOf(err); kind != apperr.KindNotFound {
		t.Fatalf("expected %s, got %v", apperr.KindNotFound, err)
	}
}

func TestSendLogAndStats(t *testing.T) {
	store := NewCredentialStore(newTestDB(t))
	ctx := context.Background()

	store.LogSend(ctx, &models.SendLog{UserID: "u1", Recipient: "b@x.com", Subject: "Hi", MessageID: "m1"})
	store.LogSend(ctx, &models.SendLog{UserID: "u1", Recipient: "c@x.com", Subject: "Yo", Error: "send_failed"})

	logs, err := store.RecentSends(ctx, 10)
	if err != nil {
		t.Fatalf("recent sends: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 log rows, got %d", len(logs))
	}

	stats, err := store.SendStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalSends != 2 || stats.SuccessCount != 1 || stats.ErrorCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestInitDB_GeneratesAPIKey(t *testing.T) {
	db, err := InitDB("file:initdbtest?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	key := GetAPIKey(db)
	if len(key) != len("sk-")+32 {
		t.Fatalf("unexpected api key format: %q", key)
	}

	rotated := RegenerateAPIKey(db)
	if rotated == key {
		t.Fatalf("regenerate should produce a new key")
	}
	if GetAPIKey(db) != rotated {
		t.Fatalf("rotated key should be persisted")
	}
}
