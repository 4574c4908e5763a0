package hosting

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/foliopress/foliopress/internal/config"
	"github.com/foliopress/foliopress/internal/providers/hosting/domain"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const defaultBranch = "main"

type GitHubProvider struct {
	client    *github.Client
	log       *zap.Logger
	owner     string
	ownerType string
}

func NewGitHubProvider(cfg config.Config, log *zap.Logger) (domain.Provider, error) {
	ghCfg := cfg.GitHub
	if strings.TrimSpace(ghCfg.Token) == "" {
		return nil, errors.New("github token is required")
	}
	if strings.TrimSpace(ghCfg.Owner) == "" {
		return nil, errors.New("github owner is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: ghCfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHubProvider{
		client:    github.NewClient(tc),
		log:       log.Named("hosting.github"),
		owner:     ghCfg.Owner,
		ownerType: ghCfg.OwnerType,
	}, nil
}

func (p *GitHubProvider) CreateRepo(ctx context.Context, name string) (domain.Repo, error) {
	// an empty org argument scopes creation to the authenticated user
	org := ""
	if p.ownerType == config.OwnerTypeOrg {
		org = p.owner
	}

	created, _, err := p.client.Repositories.Create(ctx, org, &github.Repository{
		Name:        github.String(name),
		Description: github.String("Portfolio site published with FolioPress"),
		Private:     github.Bool(false),
		AutoInit:    github.Bool(true),
	})
	if err != nil {
		return domain.Repo{}, fmt.Errorf("create repository %q: %w", name, err)
	}

	branch := created.GetDefaultBranch()
	if branch == "" {
		branch = defaultBranch
	}

	repo := domain.Repo{
		Owner:         p.owner,
		Name:          created.GetName(),
		DefaultBranch: branch,
	}
	p.log.Info("repository created",
		zap.String("repo", repo.FullName()),
		zap.String("branch", branch),
	)
	return repo, nil
}

func (p *GitHubProvider) WriteFile(ctx context.Context, repo domain.Repo, path string, content []byte, message string) error {
	_, _, err := p.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(repo.DefaultBranch),
	})
	if err != nil {
		return fmt.Errorf("write %s to %s: %w", path, repo.FullName(), err)
	}
	return nil
}

func (p *GitHubProvider) EnablePages(ctx context.Context, repo domain.Repo) error {
	_, resp, err := p.client.Repositories.EnablePages(ctx, repo.Owner, repo.Name, &github.Pages{
		Source: &github.PagesSource{
			Branch: github.String(repo.DefaultBranch),
			Path:   github.String("/"),
		},
	})
	if err != nil {
		if isPagesConflict(resp, err) {
			return domain.ErrPagesAlreadyConfigured
		}
		return fmt.Errorf("enable pages for %s: %w", repo.FullName(), err)
	}
	return nil
}

func (p *GitHubProvider) UpdatePages(ctx context.Context, repo domain.Repo) error {
	_, err := p.client.Repositories.UpdatePages(ctx, repo.Owner, repo.Name, &github.PagesUpdate{
		Source: &github.PagesSource{
			Branch: github.String(repo.DefaultBranch),
			Path:   github.String("/"),
		},
	})
	if err != nil {
		return fmt.Errorf("update pages for %s: %w", repo.FullName(), err)
	}
	return nil
}

func (p *GitHubProvider) PagesURL(repo domain.Repo) string {
	return fmt.Sprintf("https://%s.github.io/%s/", strings.ToLower(repo.Owner), repo.Name)
}

func isPagesConflict(resp *github.Response, err error) bool {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return true
		}
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return true
		}
	}
	return false
}
