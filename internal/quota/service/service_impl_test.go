package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/foliopress/foliopress/internal/account/domain"
	accountrepository "github.com/foliopress/foliopress/internal/account/repository"
	"github.com/foliopress/foliopress/internal/clock"
	"github.com/foliopress/foliopress/internal/config"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	deploymentrepository "github.com/foliopress/foliopress/internal/deployment/repository"
	"github.com/foliopress/foliopress/internal/quota/domain"
	"github.com/foliopress/foliopress/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func quotaConfig() config.Config {
	return config.Config{
		Quota: config.QuotaConfig{
			TrialPeriod:    21 * 24 * time.Hour,
			DailyInterval:  24 * time.Hour,
			MonthlyLimit:   2,
			MaxLivePerUser: 2,
		},
	}
}

func newQuotaService(t *testing.T, clk clock.Clock) (*Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&accountdomain.Account{}, &deploymentdomain.Deployment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Cfg:         quotaConfig(),
		Clock:       clk,
		Accounts:    accountrepository.Provide(),
		Deployments: deploymentrepository.Provide(),
	}).(*Service)

	return svc, conn
}

func TestEvaluateCreatesAccountOnFirstContact(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	account, err := svc.Evaluate(context.Background(), "fp-new")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	wantExpiry := now.Add(21 * 24 * time.Hour)
	if !account.Expiry.Equal(wantExpiry) {
		t.Fatalf("expiry = %v, want %v", account.Expiry, wantExpiry)
	}
	if account.MonthlyCount != 0 {
		t.Fatalf("monthly count = %d, want 0", account.MonthlyCount)
	}
	if !account.LastMonthReset.Equal(accountdomain.MonthAnchor(now)) {
		t.Fatalf("month reset = %v, want %v", account.LastMonthReset, accountdomain.MonthAnchor(now))
	}

	stored, err := accountrepository.Provide().FindByFingerprint(context.Background(), conn, "fp-new")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored == nil {
		t.Fatal("account row was not persisted")
	}
}

func TestEvaluateIsIdempotentWhenDenied(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	lastPublish := now.Add(-1 * time.Hour)
	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-denied",
		Expiry:         now.Add(10 * 24 * time.Hour),
		LastPublish:    &lastPublish,
		MonthlyCount:   1,
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	for i := 0; i < 3; i++ {
		if _, err := svc.Evaluate(context.Background(), "fp-denied"); !errors.Is(err, domain.ErrDailyLimit) {
			t.Fatalf("attempt %d: err = %v, want ErrDailyLimit", i, err)
		}
	}

	stored, err := accountrepository.Provide().FindByFingerprint(context.Background(), conn, "fp-denied")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.MonthlyCount != 1 {
		t.Fatalf("monthly count = %d, want 1 (evaluate must not consume)", stored.MonthlyCount)
	}
}

func TestEvaluateAdminBypassesLimits(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	lastPublish := now.Add(-time.Minute)
	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-admin",
		IsAdmin:        true,
		Expiry:         now.Add(-time.Hour),
		LastPublish:    &lastPublish,
		MonthlyCount:   99,
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	if _, err := svc.Evaluate(context.Background(), "fp-admin"); err != nil {
		t.Fatalf("admin evaluate: %v", err)
	}
}

func TestEvaluateTrialExpired(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-expired",
		Expiry:         now.Add(-time.Second),
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	if _, err := svc.Evaluate(context.Background(), "fp-expired"); !errors.Is(err, domain.ErrTrialExpired) {
		t.Fatalf("err = %v, want ErrTrialExpired", err)
	}
}

func TestEvaluateDailyLimitBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	lastPublish := now.Add(-24 * time.Hour)
	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-daily",
		Expiry:         now.Add(10 * 24 * time.Hour),
		LastPublish:    &lastPublish,
		MonthlyCount:   0,
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	// exactly 24h since the last publish passes the daily rule
	if _, err := svc.Evaluate(context.Background(), "fp-daily"); err != nil {
		t.Fatalf("evaluate at boundary: %v", err)
	}

	recent := now.Add(-24*time.Hour + time.Second)
	if err := conn.Exec(`UPDATE accounts SET last_publish = ? WHERE fingerprint = ?`, recent, "fp-daily").Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Evaluate(context.Background(), "fp-daily"); !errors.Is(err, domain.ErrDailyLimit) {
		t.Fatalf("err = %v, want ErrDailyLimit", err)
	}
}

func TestEvaluateMonthlyLimitAndReset(t *testing.T) {
	now := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	lastPublish := now.Add(-48 * time.Hour)
	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-monthly",
		Expiry:         now.Add(10 * 24 * time.Hour),
		LastPublish:    &lastPublish,
		MonthlyCount:   2,
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	if _, err := svc.Evaluate(context.Background(), "fp-monthly"); !errors.Is(err, domain.ErrMonthlyLimit) {
		t.Fatalf("err = %v, want ErrMonthlyLimit", err)
	}

	// crossing the month boundary resets the counter durably
	clk.Advance(2 * time.Hour)
	account, err := svc.Evaluate(context.Background(), "fp-monthly")
	if err != nil {
		t.Fatalf("evaluate after month rollover: %v", err)
	}
	if account.MonthlyCount != 0 {
		t.Fatalf("monthly count = %d, want 0 after reset", account.MonthlyCount)
	}

	stored, err := accountrepository.Provide().FindByFingerprint(context.Background(), conn, "fp-monthly")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.MonthlyCount != 0 {
		t.Fatalf("persisted monthly count = %d, want 0", stored.MonthlyCount)
	}
	if !stored.LastMonthReset.Equal(accountdomain.MonthAnchor(clk.Now())) {
		t.Fatalf("persisted month reset = %v, want %v", stored.LastMonthReset, accountdomain.MonthAnchor(clk.Now()))
	}
}

func TestEvaluateLiveDeploymentLimit(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	svc, conn := newQuotaService(t, clk)

	insertAccount(t, conn, &accountdomain.Account{
		Fingerprint:    "fp-live",
		Expiry:         now.Add(10 * 24 * time.Hour),
		MonthlyCount:   0,
		LastMonthReset: accountdomain.MonthAnchor(now),
	})

	// an expired deployment does not count against the live limit
	insertDeployment(t, conn, "fp-live", 1, true, now.Add(-time.Hour))
	insertDeployment(t, conn, "fp-live", 2, true, now.Add(24*time.Hour))

	if _, err := svc.Evaluate(context.Background(), "fp-live"); err != nil {
		t.Fatalf("evaluate with one live deployment: %v", err)
	}

	insertDeployment(t, conn, "fp-live", 3, true, now.Add(24*time.Hour))
	if _, err := svc.Evaluate(context.Background(), "fp-live"); !errors.Is(err, domain.ErrLiveLimit) {
		t.Fatalf("err = %v, want ErrLiveLimit", err)
	}
}

func TestEvaluateRequiresFingerprint(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	svc, _ := newQuotaService(t, clk)

	if _, err := svc.Evaluate(context.Background(), "   "); !errors.Is(err, domain.ErrFingerprintRequired) {
		t.Fatalf("err = %v, want ErrFingerprintRequired", err)
	}
}

func insertAccount(t *testing.T, conn *gorm.DB, account *accountdomain.Account) {
	t.Helper()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = account.LastMonthReset
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}
	if err := accountrepository.Provide().Insert(context.Background(), conn, account); err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func insertDeployment(t *testing.T, conn *gorm.DB, fingerprint string, id int64, live bool, expiresAt time.Time) {
	t.Helper()
	deployment := &deploymentdomain.Deployment{
		ID:          snowflake.ID(id),
		Fingerprint: fingerprint,
		Repo:        "owner/repo",
		Homepage:    "https://owner.github.io/repo/",
		State:       deploymentdomain.StateCreated,
		Live:        live,
		ExpiresAt:   expiresAt,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   expiresAt.Add(-21 * 24 * time.Hour),
		UpdatedAt:   expiresAt.Add(-21 * 24 * time.Hour),
	}
	if err := deploymentrepository.Provide().Insert(context.Background(), conn, deployment); err != nil {
		t.Fatalf("insert deployment: %v", err)
	}
}
