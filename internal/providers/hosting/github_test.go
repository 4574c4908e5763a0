package hosting

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/foliopress/foliopress/internal/config"
	"github.com/foliopress/foliopress/internal/providers/hosting/domain"
	"go.uber.org/zap"
)

func TestNewGitHubProviderValidatesConfig(t *testing.T) {
	log := zap.NewNop()

	if _, err := NewGitHubProvider(config.Config{
		GitHub: config.GitHubConfig{Owner: "acme"},
	}, log); err == nil {
		t.Fatal("expected error for missing token")
	}

	if _, err := NewGitHubProvider(config.Config{
		GitHub: config.GitHubConfig{Token: "ghp_x"},
	}, log); err == nil {
		t.Fatal("expected error for missing owner")
	}

	provider, err := NewGitHubProvider(config.Config{
		GitHub: config.GitHubConfig{Token: "ghp_x", Owner: "acme"},
	}, log)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider == nil {
		t.Fatal("provider is nil")
	}
}

func TestPagesURL(t *testing.T) {
	provider := &GitHubProvider{owner: "Acme", log: zap.NewNop()}

	got := provider.PagesURL(domain.Repo{Owner: "Acme", Name: "jane-doe-abc"})
	want := "https://acme.github.io/jane-doe-abc/"
	if got != want {
		t.Fatalf("url = %q, want %q", got, want)
	}
}

func TestIsPagesConflict(t *testing.T) {
	conflictResp := &github.Response{Response: &http.Response{StatusCode: http.StatusConflict}}
	unprocResp := &github.Response{Response: &http.Response{StatusCode: http.StatusUnprocessableEntity}}
	okResp := &github.Response{Response: &http.Response{StatusCode: http.StatusForbidden}}

	if !isPagesConflict(conflictResp, errors.New("409")) {
		t.Fatal("409 response should classify as conflict")
	}
	if !isPagesConflict(unprocResp, errors.New("422")) {
		t.Fatal("422 response should classify as conflict")
	}
	if isPagesConflict(okResp, errors.New("403")) {
		t.Fatal("403 response must not classify as conflict")
	}
	if isPagesConflict(nil, errors.New("plain")) {
		t.Fatal("plain error must not classify as conflict")
	}

	ghErr := &github.ErrorResponse{Response: &http.Response{StatusCode: http.StatusConflict}}
	if !isPagesConflict(nil, ghErr) {
		t.Fatal("wrapped 409 error should classify as conflict")
	}
}
