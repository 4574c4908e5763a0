package pdf

import (
	"context"
	"io"

	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
)

// CoverLetterData carries the letter-specific fields the portfolio
// content does not hold.
type CoverLetterData struct {
	Content portfoliodomain.Content

	RecipientName string
	Company       string
	Role          string
	Date          string
	Body          string
}

type Provider interface {
	GenerateResume(ctx context.Context, content portfoliodomain.Content) (io.Reader, error)
	GenerateCoverLetter(ctx context.Context, data CoverLetterData) (io.Reader, error)
}
