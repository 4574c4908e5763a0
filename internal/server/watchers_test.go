package server

import (
	"testing"
	"time"

	"github.com/foliopress/foliopress/internal/activation"
	"github.com/foliopress/foliopress/internal/clock"
	"go.uber.org/zap"
)

func newRegistryWatcher() *activation.Watcher {
	clk := clock.NewFakeClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC))
	return activation.NewWatcher(clk, nil, activation.Config{}, zap.NewNop())
}

func TestWatcherRegistryEvictRemovesFinishedEntry(t *testing.T) {
	r := newWatcherRegistry()
	w := newRegistryWatcher()

	canceled := false
	r.Put("1001", w, func() { canceled = true })
	r.Evict("1001", w)

	if !canceled {
		t.Fatal("cancel not invoked on eviction")
	}
	if _, ok := r.Get("1001"); ok {
		t.Fatal("entry still present after eviction")
	}
	if got := r.Len(); got != 0 {
		t.Fatalf("registry size = %d, want 0", got)
	}
}

func TestWatcherRegistryEvictIgnoresStaleWatcher(t *testing.T) {
	r := newWatcherRegistry()
	old := newRegistryWatcher()
	replacement := newRegistryWatcher()

	r.Put("1001", old, func() {})
	r.Put("1001", replacement, func() {})

	// the old poll goroutine exiting must not tear down the replacement
	r.Evict("1001", old)

	got, ok := r.Get("1001")
	if !ok || got != replacement {
		t.Fatal("replacement watcher evicted by a stale goroutine")
	}
}

func TestWatcherRegistryDoesNotGrowPastFinishedRuns(t *testing.T) {
	r := newWatcherRegistry()

	for i := 0; i < 5; i++ {
		w := newRegistryWatcher()
		r.Put("2002", w, func() {})
		r.Evict("2002", w)
	}

	if got := r.Len(); got != 0 {
		t.Fatalf("registry size = %d after finished runs, want 0", got)
	}
}
