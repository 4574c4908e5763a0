package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
)

const (
	maxSlugLen   = 40
	fallbackSlug = "portfolio"
)

// deriveSlug picks the first usable identity source and normalizes it to a
// lowercase alphanumeric-and-hyphen form.
func deriveSlug(content portfoliodomain.Content, fingerprint string) string {
	for _, candidate := range []string{content.Username, fingerprint, content.FullName} {
		if s := normalizeSlug(candidate); s != "" {
			return s
		}
	}
	return fallbackSlug
}

func normalizeSlug(raw string) string {
	s := slug.Make(strings.TrimSpace(raw))
	// slug.Make keeps underscores; repository names only get hyphens
	s = strings.ReplaceAll(s, "_", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return strings.Trim(s, "-")
}

// repoName appends a base-36 millisecond timestamp so repeated publishes
// never collide without a remote existence check.
func repoName(slugValue string, now time.Time) string {
	return slugValue + "-" + strconv.FormatInt(now.UnixMilli(), 36)
}
