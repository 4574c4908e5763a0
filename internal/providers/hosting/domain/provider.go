package domain

import (
	"context"
	"errors"
)

// Repo identifies a repository created for a published portfolio.
type Repo struct {
	Owner         string
	Name          string
	DefaultBranch string
}

func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// Provider drives the remote hosting API through the deployment sequence.
// None of the calls are compensated: a failure after CreateRepo leaves the
// repository behind.
type Provider interface {
	// CreateRepo creates a public, auto-initialized repository under the
	// configured owner.
	CreateRepo(ctx context.Context, name string) (Repo, error)

	// WriteFile commits content to path on the repository's default branch.
	WriteFile(ctx context.Context, repo Repo, path string, content []byte, message string) error

	// EnablePages turns on static-page hosting. Returns
	// ErrPagesAlreadyConfigured when the API reports the site as already
	// set up (conflict/unprocessable), in which case the caller retries
	// once with UpdatePages.
	EnablePages(ctx context.Context, repo Repo) error

	// UpdatePages reconfigures an existing pages site.
	UpdatePages(ctx context.Context, repo Repo) error

	// PagesURL derives the public homepage from the owner/repo naming
	// convention. Purely computational.
	PagesURL(repo Repo) string
}

// ErrPagesAlreadyConfigured classifies the 409/422 responses from the
// pages-enable call.
var ErrPagesAlreadyConfigured = errors.New("pages_already_configured")
