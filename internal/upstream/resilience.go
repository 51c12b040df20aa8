package upstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used by every upstream unless overridden.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: 300 * time.Millisecond,
	MaxInterval:     3 * time.Second,
}

var (
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// Caller executes GETs against one upstream with retries and a circuit breaker.
type Caller struct {
	Provider string
	Client   httpclient.Client
	Backoff  BackoffConfig
	breaker  *gobreaker.CircuitBreaker
}

// NewCaller builds a Caller with its own circuit breaker.
func NewCaller(provider string, client httpclient.Client, backoff BackoffConfig) *Caller {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Caller{
		Provider: provider,
		Client:   client,
		Backoff:  backoff,
		breaker:  cb,
	}
}

// Get fetches url and returns the body of a 2xx response. Every failure is
// returned as *Error. Only transport failures and 5xx statuses are retried
// and counted by the breaker; 4xx statuses return immediately.
func (c *Caller) Get(ctx context.Context, url string, messages map[int]string) ([]byte, error) {
	resp, err := c.doRequestWithResilience(ctx, url)
	if err != nil {
		var se *statusErr
		if errors.As(err, &se) {
			return nil, StatusError(c.Provider, se.resp.StatusCode(), se.resp.Body(), messages)
		}
		if ctx.Err() != nil {
			return nil, NetworkError(c.Provider, ctx.Err())
		}
		return nil, NetworkError(c.Provider, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, StatusError(c.Provider, resp.StatusCode(), resp.Body(), messages)
	}
	return resp.Body(), nil
}

// statusErr carries the last 5xx response once retries are exhausted.
type statusErr struct {
	resp *resty.Response
}

func (e *statusErr) Error() string {
	return fmt.Sprintf("%v: %d", errServerError, e.resp.StatusCode())
}

// doRequestWithResilience executes the request with retries, exponential backoff,
// and a circuit breaker.
func (c *Caller) doRequestWithResilience(ctx context.Context, url string) (*resty.Response, error) {
	if c.Client == nil {
		return nil, errNoHTTPClient
	}
	if c.Backoff.MaxRetries < 0 || c.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, execErr := c.Client.Get(ctx, url, nil)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode() >= http.StatusInternalServerError {
				return nil, &statusErr{resp: resp}
			}
			// Client errors are the caller's problem, not the upstream's health.
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*resty.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.Backoff.MaxInterval && c.Backoff.MaxInterval > 0 {
			delay = c.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
