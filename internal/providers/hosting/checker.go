package hosting

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Checker resolves a published URL server-side. Doing the probe on the
// server avoids the cross-origin and cache problems a browser-side fetch
// of a github.io URL would hit.
type Checker struct {
	client *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CheckLive reports whether target currently serves a page. A freshly
// enabled pages site answers 404 until the first build finishes, so any
// non-2xx/3xx status counts as not live rather than as an error.
func (c *Checker) CheckLive(ctx context.Context, target string) (bool, error) {
	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return false, err
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return false, errors.New("unsupported url scheme")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400, nil
}
