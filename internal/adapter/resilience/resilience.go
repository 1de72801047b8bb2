// Package resilience wraps outbound provider HTTP calls with retries,
// exponential backoff and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/sony/gobreaker"
)

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrServerError  = errors.New("server error")
	ErrUnexpected   = errors.New("unexpected status code")
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoHTTPClient = errors.New("http client not configured")
)

// Backoff controls exponential backoff between attempts. The wait starts at
// InitialInterval and doubles up to MaxInterval.
type Backoff struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Caller executes requests against one upstream with a shared breaker.
type Caller struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff Backoff
}

// NewCaller creates a Caller whose breaker opens after five consecutive
// failures and probes again after timeout.
func NewCaller(name string, client *http.Client, backoff Backoff) *Caller {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	if backoff.MaxInterval < backoff.InitialInterval {
		backoff.MaxInterval = backoff.InitialInterval
	}
	return &Caller{client: client, breaker: cb, backoff: backoff}
}

// Do sends the request built by build, retrying rate-limit, server and
// transport errors. 4xx responses other than 429 are returned immediately.
// On success the caller owns the response body.
func (c *Caller) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	if c.client == nil {
		return nil, ErrNoHTTPClient
	}

	wait := c.backoff.InitialInterval
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		result, err := c.breaker.Execute(func() (any, error) {
			return c.send(req)
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type %T from circuit breaker", result)
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if !retryable(err) || attempt >= c.backoff.MaxRetries {
			return nil, err
		}

		if !retry.SleepWithContext(ctx, wait) {
			return nil, ctx.Err()
		}
		wait = retry.NextBackoff(wait, c.backoff.MaxInterval)
	}
}

func (c *Caller) send(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		drain(resp)
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		drain(resp)
		return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpected, resp.StatusCode, body)
	}
	return resp, nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrUnexpected) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
