package repository

import (
	"context"
	"testing"
	"time"

	"github.com/foliopress/foliopress/internal/account/domain"
	"github.com/foliopress/foliopress/pkg/db"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.Account{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestFindByFingerprintMissing(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide()

	account, err := repo.FindByFingerprint(context.Background(), conn, "nope")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if account != nil {
		t.Fatalf("account = %+v, want nil", account)
	}
}

func TestConsumePublishCompareAndIncrement(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	anchor := domain.MonthAnchor(now)

	account := &domain.Account{
		Fingerprint:    "fp-cas",
		Expiry:         now.Add(21 * 24 * time.Hour),
		MonthlyCount:   0,
		LastMonthReset: anchor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Insert(context.Background(), conn, account); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err := repo.ConsumePublish(context.Background(), conn, "fp-cas", 0, anchor, now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !ok {
		t.Fatal("first consume should match")
	}

	// second caller raced on the same snapshot: expected count is stale
	ok, err = repo.ConsumePublish(context.Background(), conn, "fp-cas", 0, anchor, now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatal("stale consume must not match")
	}

	stored, err := repo.FindByFingerprint(context.Background(), conn, "fp-cas")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.MonthlyCount != 1 {
		t.Fatalf("monthly count = %d, want 1", stored.MonthlyCount)
	}
	if stored.LastPublish == nil || !stored.LastPublish.Equal(now) {
		t.Fatalf("last publish = %v, want %v", stored.LastPublish, now)
	}
}

func TestConsumePublishStaleAnchorDoesNotMatch(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide()

	now := time.Date(2026, time.April, 1, 0, 30, 0, 0, time.UTC)
	anchor := domain.MonthAnchor(now)
	staleAnchor := domain.MonthAnchor(now.AddDate(0, -1, 0))

	if err := repo.Insert(context.Background(), conn, &domain.Account{
		Fingerprint:    "fp-anchor",
		Expiry:         now.Add(21 * 24 * time.Hour),
		MonthlyCount:   0,
		LastMonthReset: anchor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ok, err := repo.ConsumePublish(context.Background(), conn, "fp-anchor", 0, staleAnchor, now)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if ok {
		t.Fatal("consume with stale month anchor must not match")
	}
}

func TestResetMonthlyWindow(t *testing.T) {
	conn := newTestDB(t)
	repo := Provide()

	now := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)
	oldAnchor := domain.MonthAnchor(now)
	lastPublish := now.Add(-time.Hour)

	if err := repo.Insert(context.Background(), conn, &domain.Account{
		Fingerprint:    "fp-reset",
		Expiry:         now.Add(21 * 24 * time.Hour),
		LastPublish:    &lastPublish,
		MonthlyCount:   2,
		LastMonthReset: oldAnchor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	later := now.Add(2 * time.Minute)
	newAnchor := domain.MonthAnchor(later)
	if err := repo.ResetMonthlyWindow(context.Background(), conn, "fp-reset", newAnchor, later); err != nil {
		t.Fatalf("reset: %v", err)
	}

	stored, err := repo.FindByFingerprint(context.Background(), conn, "fp-reset")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.MonthlyCount != 0 {
		t.Fatalf("monthly count = %d, want 0", stored.MonthlyCount)
	}
	if !stored.LastMonthReset.Equal(newAnchor) {
		t.Fatalf("month reset = %v, want %v", stored.LastMonthReset, newAnchor)
	}
	// the reset clears the counter, not the daily cooldown
	if stored.LastPublish == nil || !stored.LastPublish.Equal(lastPublish) {
		t.Fatalf("last publish = %v, want %v", stored.LastPublish, lastPublish)
	}
}
