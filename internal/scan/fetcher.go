package scan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"updatescan/internal/structures"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) UpdateScanner/1.0"

// Fetcher retrieves the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	client       *http.Client
	limiter      *rate.Limiter
	userAgent    string
	maxBodyBytes int64
}

func NewHTTPFetcher(conf *structures.Config) *HTTPFetcher {
	limit := rate.Inf
	if conf.Scanner.RequestsPerSecond > 0 {
		limit = rate.Limit(conf.Scanner.RequestsPerSecond)
	}
	burst := max(conf.Scanner.Burst, 1)

	userAgent := conf.Scanner.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBody := conf.Scanner.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 * 1024 * 1024
	}
	timeout := conf.Scanner.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPFetcher{
		client:       &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, burst),
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch: rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	return body, nil
}
