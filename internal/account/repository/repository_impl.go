package repository

import (
	"context"
	"time"

	"github.com/foliopress/foliopress/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByFingerprint(ctx context.Context, db *gorm.DB, fingerprint string) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT fingerprint, is_admin, expiry, last_publish, monthly_count, last_month_reset, created_at, updated_at
		 FROM accounts WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.Fingerprint == "" {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (fingerprint, is_admin, expiry, last_publish, monthly_count, last_month_reset, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Fingerprint,
		account.IsAdmin,
		account.Expiry,
		account.LastPublish,
		account.MonthlyCount,
		account.LastMonthReset,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) ResetMonthlyWindow(ctx context.Context, db *gorm.DB, fingerprint string, anchor, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET monthly_count = 0, last_month_reset = ?, updated_at = ?
		 WHERE fingerprint = ?`,
		anchor,
		now,
		fingerprint,
	).Error
}

func (r *repo) ConsumePublish(ctx context.Context, db *gorm.DB, fingerprint string, expectedCount int, anchor, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE accounts SET monthly_count = monthly_count + 1, last_publish = ?, updated_at = ?
		 WHERE fingerprint = ? AND monthly_count = ? AND last_month_reset = ?`,
		now,
		now,
		fingerprint,
		expectedCount,
		anchor,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
