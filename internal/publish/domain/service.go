package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
)

type Request struct {
	Fingerprint string
	Content     portfoliodomain.Content
}

type Result struct {
	DeploymentID snowflake.ID `json:"deployment_id"`
	Repo         string       `json:"repo"`
	Homepage     string       `json:"homepage"`
}

// Service runs the remote deployment sequence for a quota-approved
// publish attempt.
type Service interface {
	Publish(ctx context.Context, req Request) (*Result, error)
}

var (
	ErrContentRequired   = errors.New("content_required")
	ErrPublishInProgress = errors.New("publish_in_progress")
)
