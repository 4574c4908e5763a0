package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foliopress/foliopress/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, deployment *Deployment) error

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Deployment, error)

	// CountLive counts rows with live = true and expires_at in the future.
	CountLive(ctx context.Context, db *gorm.DB, fingerprint string, now time.Time) (int64, error)

	List(ctx context.Context, db *gorm.DB, fingerprint string, page pagination.Pagination) ([]*Deployment, error)

	// ExpireDue flips live deployments whose expires_at has passed and
	// reports how many rows changed.
	ExpireDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
