package boc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 25 * time.Second
	DefaultAttempts  = 3
	DefaultDelay     = 5 * time.Second
	DefaultUserAgent = "fxwatch/1.0 (+https://github.com/sig-0/fxwatch)"
)

var errEmptyBody = errors.New("empty response body")

// Page is a retrieved quotation page
type Page struct {
	FetchedAt time.Time
	SHA256    string
	Body      []byte
}

// Fetcher retrieves the quotation page with bounded, fixed-delay retries
type Fetcher struct {
	logger *slog.Logger
	client *resty.Client

	url      string
	attempts int
	delay    time.Duration
}

type FetcherOption func(f *Fetcher)

// WithFetchLogger specifies the logger for the fetcher
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithAttempts specifies the total number of attempts (minimum 1)
func WithAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithDelay specifies the fixed delay between attempts
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.delay = d
		}
	}
}

// WithTimeout specifies the per-attempt request timeout
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.SetTimeout(d)
		}
	}
}

// WithUserAgent specifies the client identity header
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.client.SetHeader("User-Agent", ua)
		}
	}
}

// NewFetcher creates a new page fetcher for the given URL
func NewFetcher(url string, opts ...FetcherOption) *Fetcher {
	client := resty.New().
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	f := &Fetcher{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		client:   client,
		url:      url,
		attempts: DefaultAttempts,
		delay:    DefaultDelay,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// URL returns the page URL
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch retrieves the page. After the last failed attempt, a *FetchError
// wrapping the last underlying error is returned
func (f *Fetcher) Fetch(ctx context.Context) (*Page, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		page, err := f.fetchOnce(ctx)
		if err == nil {
			return page, nil
		}

		lastErr = err

		f.logger.Warn(
			"page fetch attempt failed",
			"url", f.url,
			"attempt", attempt,
			"attempts", f.attempts,
			"err", err,
		)

		if attempt == f.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{
				URL:      f.url,
				Attempts: attempt,
				Err:      ctx.Err(),
			}
		case <-time.After(f.delay):
		}
	}

	return nil, &FetchError{
		URL:      f.url,
		Attempts: f.attempts,
		Err:      lastErr,
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context) (*Page, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) == 0 {
		return nil, errEmptyBody
	}

	sum := sha256.Sum256(body)

	return &Page{
		FetchedAt: time.Now().UTC(),
		SHA256:    hex.EncodeToString(sum[:]),
		Body:      body,
	}, nil
}
