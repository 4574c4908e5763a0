package domain

import (
	"context"
	"errors"

	accountdomain "github.com/foliopress/foliopress/internal/account/domain"
)

// Service gates publish attempts. Evaluate applies the limit rules in
// order and short-circuits on the first failure; it never consumes quota
// itself, the orchestrator increments the counter after a successful
// publish.
type Service interface {
	Evaluate(ctx context.Context, fingerprint string) (*accountdomain.Account, error)
}

var (
	ErrFingerprintRequired = errors.New("fingerprint_required")
	ErrTrialExpired        = errors.New("trial_expired")
	ErrDailyLimit          = errors.New("daily_limit_reached")
	ErrMonthlyLimit        = errors.New("monthly_limit_reached")
	ErrLiveLimit           = errors.New("too_many_live_portfolios")
)
