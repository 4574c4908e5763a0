package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/foliopress/foliopress/internal/account/domain"
	"github.com/foliopress/foliopress/internal/clock"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	obsmetrics "github.com/foliopress/foliopress/internal/observability/metrics"
	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
	"github.com/foliopress/foliopress/internal/portfolio/render"
	hostingdomain "github.com/foliopress/foliopress/internal/providers/hosting/domain"
	"github.com/foliopress/foliopress/internal/publish/domain"
	quotadomain "github.com/foliopress/foliopress/internal/quota/domain"
	"github.com/foliopress/foliopress/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Quota       quotadomain.Service
	Accounts    accountdomain.Repository
	Deployments deploymentdomain.Repository
	Hosting     hostingdomain.Provider
	Renderer    render.Renderer
	Limiter     *ratelimit.PublishLimiter `optional:"true"`
	Metrics     *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	quota       quotadomain.Service
	accounts    accountdomain.Repository
	deployments deploymentdomain.Repository
	hosting     hostingdomain.Provider
	renderer    render.Renderer
	limiter     *ratelimit.PublishLimiter
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("publish.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		quota:       p.Quota,
		accounts:    p.Accounts,
		deployments: p.Deployments,
		hosting:     p.Hosting,
		renderer:    p.Renderer,
		limiter:     p.Limiter,
		metrics:     p.Metrics,
	}
}

func (s *Service) Publish(ctx context.Context, req domain.Request) (*domain.Result, error) {
	fingerprint := strings.TrimSpace(req.Fingerprint)
	if fingerprint == "" {
		return nil, quotadomain.ErrFingerprintRequired
	}
	if isEmptyContent(req.Content) {
		return nil, domain.ErrContentRequired
	}

	// serialize publishes per fingerprint so two near-simultaneous calls
	// cannot both pass the quota read before either writes
	lockToken, acquired, err := s.limiter.TryLockPublish(ctx, fingerprint)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrPublishInProgress
	}
	defer func() {
		if err := s.limiter.ReleasePublish(ctx, fingerprint, lockToken); err != nil {
			s.log.Warn("failed to release publish lock", zap.Error(err))
		}
	}()

	account, err := s.quota.Evaluate(ctx, fingerprint)
	if err != nil {
		if reason, denied := quotaDenialReason(err); denied {
			s.metrics.RecordQuotaDenied(reason)
		} else {
			s.metrics.RecordPublish("error")
		}
		return nil, err
	}

	result, err := s.deploy(ctx, fingerprint, account, req.Content)
	if err != nil {
		s.metrics.RecordPublish("error")
		return nil, err
	}

	s.metrics.RecordPublish("success")
	return result, nil
}

func (s *Service) deploy(ctx context.Context, fingerprint string, account *accountdomain.Account, content portfoliodomain.Content) (*domain.Result, error) {
	now := s.clock.Now()
	slugValue := deriveSlug(content, fingerprint)
	name := repoName(slugValue, now)

	log := s.log.With(
		zap.String("fingerprint", fingerprint),
		zap.String("repo_name", name),
	)

	repo, err := s.hosting.CreateRepo(ctx, name)
	if err != nil {
		return nil, err
	}

	index, err := s.renderer.RenderIndex(content)
	if err != nil {
		return nil, fmt.Errorf("render portfolio: %w", err)
	}

	files := []struct {
		path    string
		content string
		message string
	}{
		{"index.html", index, "Add portfolio page"},
		{"404.html", s.renderer.RenderNotFound(), "Add fallback page"},
		// an empty .nojekyll disables the default Jekyll build
		{".nojekyll", "", "Disable Jekyll processing"},
	}
	for _, f := range files {
		if err := s.hosting.WriteFile(ctx, repo, f.path, []byte(f.content), f.message); err != nil {
			return nil, err
		}
	}

	if err := s.enablePages(ctx, repo, log); err != nil {
		return nil, err
	}

	homepage := s.hosting.PagesURL(repo)

	deployment := &deploymentdomain.Deployment{
		ID:          s.genID.Generate(),
		Fingerprint: fingerprint,
		Repo:        repo.FullName(),
		Homepage:    homepage,
		State:       deploymentdomain.StateCreated,
		Live:        true,
		// the deployment's lifetime is pinned to the trial window as it
		// stood at publish time
		ExpiresAt: account.Expiry,
		Metadata: datatypes.JSONMap{
			"slug":         slugValue,
			"display_name": content.DisplayName(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.deployments.Insert(ctx, s.db, deployment); err != nil {
		return nil, err
	}

	// bookkeeping is best-effort: the site is already live, so a counter
	// failure is logged rather than surfaced
	consumed, err := s.accounts.ConsumePublish(ctx, s.db, fingerprint, account.MonthlyCount, account.LastMonthReset, now)
	if err != nil {
		log.Error("failed to update publish counters", zap.Error(err))
	} else if !consumed {
		log.Warn("publish counter changed mid-flight, counter not incremented",
			zap.Int("expected_count", account.MonthlyCount),
		)
	}

	log.Info("portfolio published",
		zap.String("repo", repo.FullName()),
		zap.String("homepage", homepage),
	)

	return &domain.Result{
		DeploymentID: deployment.ID,
		Repo:         repo.FullName(),
		Homepage:     homepage,
	}, nil
}

// enablePages handles the one recovered provider failure: an
// already-configured pages site answers 409/422 and is retried once as an
// update.
func (s *Service) enablePages(ctx context.Context, repo hostingdomain.Repo, log *zap.Logger) error {
	err := s.hosting.EnablePages(ctx, repo)
	if err == nil {
		return nil
	}
	if !errors.Is(err, hostingdomain.ErrPagesAlreadyConfigured) {
		return err
	}

	log.Info("pages already configured, retrying as update")
	s.metrics.RecordPagesFallback()
	return s.hosting.UpdatePages(ctx, repo)
}

// quotaDenialReason reports the metric label for a quota denial. Infra
// failures surfacing from Evaluate are not denials and must not feed
// arbitrary strings into the label set.
func quotaDenialReason(err error) (string, bool) {
	for _, sentinel := range []error{
		quotadomain.ErrFingerprintRequired,
		quotadomain.ErrTrialExpired,
		quotadomain.ErrDailyLimit,
		quotadomain.ErrMonthlyLimit,
		quotadomain.ErrLiveLimit,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func isEmptyContent(content portfoliodomain.Content) bool {
	return content.Username == "" &&
		content.FullName == "" &&
		content.Headline == "" &&
		content.About == "" &&
		len(content.Projects) == 0 &&
		len(content.Experience) == 0
}
