// Package upstream implements the retrying HTTP client used to fetch the
// government data provider's CSV and JSON resources.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

// Options controls one fetch: Retries additional attempts after the first,
// with the delay doubling after each failed attempt, and a hard per-attempt
// timeout.
type Options struct {
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// DefaultOptions matches the upstream provider's characteristics: slow but
// steady, occasionally returning a transient 5xx during its own update window.
func DefaultOptions() Options {
	return Options{
		Retries:    3,
		RetryDelay: 1 * time.Second,
		Timeout:    30 * time.Second,
	}
}

// Result is the discriminated outcome of a fetch. Fetch methods never return
// a Go error for request failure; callers branch on Success and read Err for
// the last attempt's failure message.
type Result struct {
	Success    bool
	Body       string
	StatusCode int
	Attempts   int
	Err        string
}

// Client fetches upstream resources with timeout, retry, and exponential
// backoff. Backoff sleeps go through the injected clock so tests can run
// without waiting.
type Client struct {
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// New creates a Client. Per-attempt timeouts are applied via request
// contexts, not a client-wide Timeout, so Options control them per call.
func New(logger *slog.Logger, clock clockwork.Clock) *Client {
	return &Client{
		httpClient: &http.Client{},
		clock:      clock,
		logger:     logger,
	}
}

// FetchWithRetry fetches url, retrying on any non-2xx status or transport
// error. Exhausting retries yields a failed Result carrying the last error.
func (c *Client) FetchWithRetry(ctx context.Context, url string, opts Options) Result {
	opts = withDefaults(opts)

	delay := opts.RetryDelay
	var lastErr error
	lastStatus := 0
	attempts := 0

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		attempts++
		body, status, err := c.attempt(ctx, url, opts.Timeout)
		if err == nil {
			c.logger.Info("fetch succeeded",
				"url", url, "attempt", attempt+1, "status", status)
			return Result{Success: true, Body: body, StatusCode: status, Attempts: attempts}
		}

		lastErr = err
		lastStatus = status
		c.logger.Warn("fetch attempt failed",
			"url", url, "attempt", attempt+1, "max_attempts", opts.Retries+1, "error", err)

		if attempt == opts.Retries {
			break
		}
		if !c.sleep(ctx, delay) {
			lastErr = ctx.Err()
			break
		}
		delay *= 2
	}

	return Result{
		Success:    false,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Err:        errString(lastErr),
	}
}

// FetchCSV fetches a plain-text CSV resource. Identical to FetchWithRetry;
// the body is returned undecoded.
func (c *Client) FetchCSV(ctx context.Context, url string, opts Options) Result {
	return c.FetchWithRetry(ctx, url, opts)
}

// FetchJSON fetches a resource and decodes its body into v. A body that is
// not valid JSON yields a failed Result, not a retry: the resource was
// served, it is just unusable.
func (c *Client) FetchJSON(ctx context.Context, url string, opts Options, v any) Result {
	result := c.FetchWithRetry(ctx, url, opts)
	if !result.Success {
		return result
	}

	if err := json.Unmarshal([]byte(result.Body), v); err != nil {
		result.Success = false
		result.Err = fmt.Sprintf("decode JSON body: %v", err)
	}
	return result
}

func (c *Client) attempt(ctx context.Context, url string, timeout time.Duration) (string, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "wbgt-checker/1.0")
	req.Header.Set("Accept", "text/csv,text/plain,application/json,*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return string(body), resp.StatusCode, nil
}

// sleep waits for the backoff delay, returning false if the context ended
// first.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return opts
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
