package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/csvunion/internal/logging"
)

// HTTPConfig configures HTTPSource.
type HTTPConfig struct {
	// Timeout bounds one request including the body read (default: 30s).
	Timeout time.Duration

	// MaxBytes caps the document size (default: DefaultMaxBytes).
	MaxBytes int64

	// RateLimit is the request rate in requests per second (default: 5).
	RateLimit float64

	// RateBurst is the largest burst allowed by the limiter (default: 5).
	RateBurst int

	// UserAgent is sent with every request.
	UserAgent string

	// Transport overrides the HTTP transport, for tests.
	Transport http.RoundTripper
}

// HTTPSource fetches CSV over HTTP(S) with a client-side rate limit.
type HTTPSource struct {
	cfg     HTTPConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource, filling unset config with defaults.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "csvunion/1.0"
	}

	return &HTTPSource{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
}

// Fetch GETs locator and returns the response body as text. Any status
// outside 2xx is a FetchError carrying the status code.
func (s *HTTPSource) Fetch(ctx context.Context, locator string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			Locator:    locator,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	text, err := ReadText(resp.Body, s.cfg.MaxBytes)
	if err != nil {
		return "", &FetchError{Locator: locator, Err: err}
	}

	logging.FromContext(ctx).Debug("fetched over http",
		"locator", locator,
		"bytes", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
