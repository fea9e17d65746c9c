// Package fetch implements the Fetcher interface.
// It performs HTTP GET requests with browser-like headers, paces requests
// with a token bucket and retries failed attempts with growing delays.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gaurav-prasanna/threadpipe/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// ErrStatus marks a response with a non-2xx status code.
var ErrStatus = errors.New("unexpected status")

var defaultHeaders = map[string]string{
	"User-Agent":      defaultUserAgent,
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9,de;q=0.8",
	"Cache-Control":   "no-cache",
	"Pragma":          "no-cache",
}

// Options tune an HTTPFetcher. Zero values fall back to defaults.
type Options struct {
	Timeout  time.Duration
	Retries  int
	SleepMin time.Duration
	SleepMax time.Duration
	// RequestsPerSecond caps the request rate; 0 disables pacing.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// HTTPFetcher fetches web pages via HTTP.
type HTTPFetcher struct {
	client   *http.Client
	retries  int
	sleepMin time.Duration
	sleepMax time.Duration
	limiter  *rate.Limiter
	log      *zap.Logger

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an HTTPFetcher.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.SleepMax < opts.SleepMin {
		opts.SleepMax = opts.SleepMin
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &HTTPFetcher{
		client:   &http.Client{Timeout: opts.Timeout},
		retries:  opts.Retries,
		sleepMin: opts.SleepMin,
		sleepMax: opts.SleepMax,
		limiter:  limiter,
		log:      opts.Logger,
		sleep:    Sleep,
	}
}

// Fetch retrieves the body of the given URL, retrying up to the configured
// number of attempts. The last error is returned when all attempts fail.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		result, err := f.fetchOnce(ctx, url)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		f.log.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == f.retries {
			break
		}
		if err := f.sleep(ctx, f.backoff(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetching %s after %d attempts: %w", url, f.retries, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (*core.FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d for %s", ErrStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		HTML:        body,
	}, nil
}

// backoff is a jittered delay that grows linearly with the attempt number.
func (f *HTTPFetcher) backoff(attempt int) time.Duration {
	return Jitter(f.sleepMin, f.sleepMax) * time.Duration(attempt)
}

// Jitter returns a uniformly random duration in [lo, hi].
func Jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
