// Package fetch retrieves remote image bytes with a fixed-delay retry loop.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
	DefaultMaxBytes   = int64(50 * 1024 * 1024)

	acceptHeader = "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8"
)

// Doer is the HTTP transport capability the fetcher depends on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc waits between attempts. It must return early with ctx.Err()
// when the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config configures the fetcher. Zero values take the package defaults.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	MaxBytes   int64
	UserAgent  string
	// Client overrides the HTTP client built from Timeout.
	Client Doer
	// Sleep overrides the wait between attempts; tests pass NoSleep.
	Sleep  SleepFunc
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is a successful fetch.
type Result struct {
	URL         string
	Body        []byte
	StatusCode  int
	ContentType string
	Attempts    int
}

// Fetcher performs GET requests with bounded retries.
type Fetcher struct {
	config Config
}

// New creates a Fetcher. A RetryDelay of zero is honoured as "no wait".
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{config: cfg}
}

// Fetch retrieves url, retrying failed attempts after a fixed delay until
// MaxRetries attempts have been made. Failures are returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Result, error) {
	log := f.config.Logger.With("url", url)

	var lastErr error
	attempt := 0
	for attempt < f.config.MaxRetries {
		attempt++
		log.Debug("fetch attempt", "attempt", attempt, "max", f.config.MaxRetries)

		result, err := f.get(ctx, url)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err

		if !retryable(ctx, err) || attempt >= f.config.MaxRetries {
			break
		}
		log.Warn("fetch failed, retrying", "attempt", attempt, "delay", f.config.RetryDelay, "err", err)
		if err := f.config.Sleep(ctx, f.config.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	return Result{URL: url, Attempts: attempt}, &Error{URL: url, Attempts: attempt, Err: lastErr}
}

func (f *Fetcher) get(ctx context.Context, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.config.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Result{}, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		return Result{}, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, f.config.MaxBytes)
	}

	return Result{
		URL:         url,
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrTooLarge) || errors.Is(err, errBadRequest) {
		return false
	}
	return true
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoSleep skips the wait between attempts.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
