package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foliopress/foliopress/internal/clock"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	deploymentrepository "github.com/foliopress/foliopress/internal/deployment/repository"
	"github.com/foliopress/foliopress/pkg/db"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T, clk clock.Clock) (*Scheduler, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&deploymentdomain.Deployment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sched, err := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       clk,
		Deployments: deploymentrepository.Provide(),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched, conn
}

func seedDeployment(t *testing.T, conn *gorm.DB, id int64, expiresAt time.Time) {
	t.Helper()
	created := expiresAt.Add(-21 * 24 * time.Hour)
	if err := deploymentrepository.Provide().Insert(context.Background(), conn, &deploymentdomain.Deployment{
		ID:          snowflake.ID(id),
		Fingerprint: "fp-sweep",
		Repo:        "acme/site",
		Homepage:    "https://acme.github.io/site/",
		State:       deploymentdomain.StateCreated,
		Live:        true,
		ExpiresAt:   expiresAt,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   created,
		UpdatedAt:   created,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestRunOnceExpiresDueDeployments(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	sched, conn := newTestScheduler(t, clk)

	seedDeployment(t, conn, 1, now.Add(-time.Minute))
	seedDeployment(t, conn, 2, now.Add(time.Hour))

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	var expired deploymentdomain.Deployment
	if err := conn.Where("id = ?", snowflake.ID(1)).First(&expired).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if expired.Live || expired.State != deploymentdomain.StateExpired {
		t.Fatalf("deployment 1 = live=%v state=%s, want expired", expired.Live, expired.State)
	}

	var fresh deploymentdomain.Deployment
	if err := conn.Where("id = ?", snowflake.ID(2)).First(&fresh).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if !fresh.Live || fresh.State != deploymentdomain.StateCreated {
		t.Fatalf("deployment 2 = live=%v state=%s, want untouched", fresh.Live, fresh.State)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	sched, conn := newTestScheduler(t, clk)

	seedDeployment(t, conn, 7, now.Add(-time.Minute))

	for i := 0; i < 2; i++ {
		if err := sched.RunOnce(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	var count int64
	if err := conn.Model(&deploymentdomain.Deployment{}).
		Where("state = ?", deploymentdomain.StateExpired).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expired rows = %d, want 1", count)
	}
}

func TestExpiryFollowsFakeClock(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(now)
	sched, conn := newTestScheduler(t, clk)

	seedDeployment(t, conn, 9, now.Add(30*time.Minute))

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	var row deploymentdomain.Deployment
	if err := conn.Where("id = ?", snowflake.ID(9)).First(&row).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if !row.Live {
		t.Fatal("deployment expired before its time")
	}

	clk.Advance(31 * time.Minute)
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if err := conn.Where("id = ?", snowflake.ID(9)).First(&row).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if row.Live {
		t.Fatal("deployment still live after expiry")
	}
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	sched, _ := newTestScheduler(t, clock.NewFakeClock(now))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunForever did not return after cancel")
	}
}
