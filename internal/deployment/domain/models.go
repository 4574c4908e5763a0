package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StateCreated = "created"
	StateExpired = "expired"
)

// Deployment is one publish attempt. Rows are append-only: a deployment
// stops being live when its ExpiresAt passes, never by deletion.
type Deployment struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Fingerprint string            `gorm:"not null;index" json:"fingerprint"`
	Repo        string            `gorm:"not null" json:"repo"`
	Homepage    string            `gorm:"not null" json:"homepage"`
	State       string            `gorm:"not null" json:"state"`
	Live        bool              `gorm:"not null;default:false" json:"live"`
	ExpiresAt   time.Time         `gorm:"not null" json:"expires_at"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
