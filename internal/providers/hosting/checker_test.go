package hosting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckLive(t *testing.T) {
	status := http.StatusNotFound
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer upstream.Close()

	checker := NewChecker()

	live, err := checker.CheckLive(context.Background(), upstream.URL)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if live {
		t.Fatal("404 should not count as live")
	}

	status = http.StatusOK
	live, err = checker.CheckLive(context.Background(), upstream.URL)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !live {
		t.Fatal("200 should count as live")
	}
}

func TestCheckLiveRejectsBadTargets(t *testing.T) {
	checker := NewChecker()

	if _, err := checker.CheckLive(context.Background(), "ftp://example.com"); err == nil {
		t.Fatal("expected scheme error")
	}
	if _, err := checker.CheckLive(context.Background(), "://not-a-url"); err == nil {
		t.Fatal("expected parse error")
	}
}
