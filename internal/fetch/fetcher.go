// Package fetch implements the shared retrying HTTP layer every source
// adapter goes through, so retry/backoff behaviour is uniform and centrally
// testable.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"jobradar/pipeline-service/internal/cache"
)

const (
	// maxRetries is the number of retries after the initial attempt.
	maxRetries  = 3
	baseDelay   = 1 * time.Second
	httpTimeout = 15 * time.Second
)

// ErrRetriesExhausted marks a request that kept failing with retryable
// statuses until the retry budget ran out.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher wraps an HTTP client with bounded exponential-backoff retry and an
// optional response cache. A single Fetcher is shared by all source adapters
// and is safe for concurrent use; backoff sleeps block only the calling
// adapter's goroutine.
type Fetcher struct {
	client *http.Client
	cache  *cache.ResponseCache
	log    *zap.Logger

	// sleep is swapped out in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Fetcher. respCache may be nil if GetCached is never used.
func New(respCache *cache.ResponseCache, log *zap.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: httpTimeout},
		cache:  respCache,
		log:    log.Named("fetch"),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Get performs a GET with up to maxRetries retries. 2xx returns immediately;
// 429 and 5xx are retried after a backoff delay (the server's numeric
// Retry-After hint is used verbatim when present, otherwise 1s, 2s, 4s, 8s);
// any other status fails fast on the first attempt. Transport errors count as
// retryable.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	var lastStatus int
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, retryAfter, err := f.do(ctx, url)
		switch {
		case err != nil:
			lastErr, lastStatus = err, 0
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case !retryable(resp.StatusCode):
			return nil, fmt.Errorf("GET %s: status %d (not retryable)", url, resp.StatusCode)
		default:
			lastErr, lastStatus = nil, resp.StatusCode
		}

		if attempt == maxRetries {
			break
		}

		delay := baseDelay << attempt
		if retryAfter > 0 {
			delay = retryAfter
		}
		f.log.Warn("retrying request",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Int("status", lastStatus),
			zap.Duration("delay", delay),
		)
		if sleepErr := f.sleep(ctx, delay); sleepErr != nil {
			return nil, fmt.Errorf("GET %s: %w", url, sleepErr)
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("GET %s after %d attempts: %w", url, maxRetries+1, lastErr)
	}
	return nil, fmt.Errorf("GET %s: status %d after %d attempts: %w",
		url, lastStatus, maxRetries+1, ErrRetriesExhausted)
}

// GetCached consults the response cache first and performs a retried GET on a
// miss, populating the cache only on a successful (2xx) response.
func (f *Fetcher) GetCached(ctx context.Context, url string) (string, error) {
	if body, ok := f.cache.Get(url); ok {
		return body, nil
	}

	resp, err := f.Get(ctx, url)
	if err != nil {
		return "", err
	}

	body := string(resp.Body)
	f.cache.Set(url, body)
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, url string) (*Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}

	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
	return &Response{StatusCode: resp.StatusCode, Body: body}, retryAfter, nil
}

// parseRetryAfter interprets a numeric Retry-After header as whole seconds.
// HTTP-date forms are ignored; backoff falls through to the exponential delay.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
