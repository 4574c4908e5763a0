package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	FindByFingerprint(ctx context.Context, db *gorm.DB, fingerprint string) (*Account, error)
	Insert(ctx context.Context, db *gorm.DB, account *Account) error

	// ResetMonthlyWindow zeroes the monthly counter and moves the anchor.
	// The write is durable regardless of how the surrounding quota
	// evaluation ends.
	ResetMonthlyWindow(ctx context.Context, db *gorm.DB, fingerprint string, anchor, now time.Time) error

	// ConsumePublish performs a compare-and-increment of the monthly
	// counter: the update only applies while the counter still holds
	// expectedCount and the anchor is unchanged. Returns false when another
	// publish won the race.
	ConsumePublish(ctx context.Context, db *gorm.DB, fingerprint string, expectedCount int, anchor, now time.Time) (bool, error)
}
