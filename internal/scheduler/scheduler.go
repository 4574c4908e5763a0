package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/foliopress/foliopress/internal/clock"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

// Config controls the sweep cadence.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		JobTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Deployments deploymentdomain.Repository
	Config      Config `optional:"true"`
}

// Scheduler retires deployments whose trial lifetime has passed. The live
// quota already relies on expires_at, so the sweep is reporting hygiene,
// not enforcement.
type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	deployments deploymentdomain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Deployments == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler"),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		deployments: p.Deployments,
	}, nil
}

// RunOnce executes a single expiry sweep.
func (s *Scheduler) RunOnce(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	now := s.clock.Now()
	expired, err := s.deployments.ExpireDue(ctx, s.db, now)
	if err != nil {
		s.log.Error("deployment expiry sweep failed", zap.Error(err))
		return err
	}
	if expired > 0 {
		s.log.Info("deployments expired",
			zap.Int64("count", expired),
			zap.Time("as_of", now),
		)
	}
	return nil
}

// RunForever sweeps on the configured interval until ctx is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}
