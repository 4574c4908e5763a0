package domain

import "time"

// Account is the per-fingerprint usage ledger. Rows are created lazily on
// the first publish attempt.
type Account struct {
	Fingerprint    string     `gorm:"primaryKey" json:"fingerprint"`
	IsAdmin        bool       `gorm:"not null;default:false" json:"is_admin"`
	Expiry         time.Time  `gorm:"not null" json:"expiry"`
	LastPublish    *time.Time `json:"last_publish,omitempty"`
	MonthlyCount   int        `gorm:"not null;default:0" json:"monthly_count"`
	LastMonthReset time.Time  `gorm:"not null" json:"last_month_reset"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// MonthAnchor returns the first instant of t's calendar month in UTC.
// MonthlyCount is only meaningful while LastMonthReset equals the current
// anchor.
func MonthAnchor(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
