package service

import (
	"context"
	"strings"
	"time"

	accountdomain "github.com/foliopress/foliopress/internal/account/domain"
	"github.com/foliopress/foliopress/internal/clock"
	"github.com/foliopress/foliopress/internal/config"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	"github.com/foliopress/foliopress/internal/quota/domain"
	"github.com/foliopress/foliopress/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Clock       clock.Clock
	Accounts    accountdomain.Repository
	Deployments deploymentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.QuotaConfig
	clock       clock.Clock
	accounts    accountdomain.Repository
	deployments deploymentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("quota.service"),
		cfg:         p.Cfg.Quota,
		clock:       p.Clock,
		accounts:    p.Accounts,
		deployments: p.Deployments,
	}
}

func (s *Service) Evaluate(ctx context.Context, fingerprint string) (*accountdomain.Account, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return nil, domain.ErrFingerprintRequired
	}

	now := s.clock.Now()
	anchor := accountdomain.MonthAnchor(now)

	account, err := s.ensureAccount(ctx, fingerprint, now, anchor)
	if err != nil {
		return nil, err
	}

	if account.IsAdmin {
		return account, nil
	}

	if !account.Expiry.After(now) {
		return nil, domain.ErrTrialExpired
	}

	if account.LastPublish != nil && now.Sub(*account.LastPublish) < s.cfg.DailyInterval {
		return nil, domain.ErrDailyLimit
	}

	if account.MonthlyCount >= s.cfg.MonthlyLimit {
		return nil, domain.ErrMonthlyLimit
	}

	liveCount, err := s.deployments.CountLive(ctx, s.db, fingerprint, now)
	if err != nil {
		return nil, err
	}
	if liveCount >= int64(s.cfg.MaxLivePerUser) {
		return nil, domain.ErrLiveLimit
	}

	return account, nil
}

// ensureAccount fetches the ledger row, creating it on first contact and
// resetting the monthly window when the anchor moved. The reset persists
// even when a later rule denies the attempt: it is bookkeeping, not part
// of the quota decision.
func (s *Service) ensureAccount(ctx context.Context, fingerprint string, now, anchor time.Time) (*accountdomain.Account, error) {
	account, err := s.accounts.FindByFingerprint(ctx, s.db, fingerprint)
	if err != nil {
		return nil, err
	}

	if account == nil {
		account = &accountdomain.Account{
			Fingerprint:    fingerprint,
			IsAdmin:        false,
			Expiry:         now.Add(s.cfg.TrialPeriod),
			MonthlyCount:   0,
			LastMonthReset: anchor,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.accounts.Insert(ctx, s.db, account); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// concurrent first publish from the same fingerprint;
				// the other request won the insert, use its row
				return s.accounts.FindByFingerprint(ctx, s.db, fingerprint)
			}
			return nil, err
		}
		s.log.Info("account created",
			zap.String("fingerprint", fingerprint),
			zap.Time("expiry", account.Expiry),
		)
		return account, nil
	}

	if !account.LastMonthReset.Equal(anchor) {
		if err := s.accounts.ResetMonthlyWindow(ctx, s.db, fingerprint, anchor, now); err != nil {
			return nil, err
		}
		account.MonthlyCount = 0
		account.LastMonthReset = anchor
		account.UpdatedAt = now
	}

	return account, nil
}
