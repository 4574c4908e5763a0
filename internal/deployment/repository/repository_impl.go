package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foliopress/foliopress/internal/deployment/domain"
	"github.com/foliopress/foliopress/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, deployment *domain.Deployment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO deployments (id, fingerprint, repo, homepage, state, live, expires_at, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		deployment.ID,
		deployment.Fingerprint,
		deployment.Repo,
		deployment.Homepage,
		deployment.State,
		deployment.Live,
		deployment.ExpiresAt,
		deployment.Metadata,
		deployment.CreatedAt,
		deployment.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Deployment, error) {
	var deployment domain.Deployment
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&deployment).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (r *repo) CountLive(ctx context.Context, db *gorm.DB, fingerprint string, now time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Deployment{}).
		Where("fingerprint = ? AND live = ? AND expires_at > ?", fingerprint, true, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, fingerprint string, page pagination.Pagination) ([]*domain.Deployment, error) {
	var deployments []*domain.Deployment
	stmt := db.WithContext(ctx).
		Model(&domain.Deployment{}).
		Where("fingerprint = ?", fingerprint)
	stmt = page.Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&deployments).Error
	if err != nil {
		return nil, err
	}
	return deployments, nil
}

func (r *repo) ExpireDue(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE deployments SET live = ?, state = ?, updated_at = ?
		 WHERE live = ? AND expires_at <= ?`,
		false,
		domain.StateExpired,
		now,
		true,
		now,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
