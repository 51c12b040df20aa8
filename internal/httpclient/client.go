package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "weather-news-mood/1.0"

// Client is the outbound HTTP contract used by every upstream integration.
// Non-2xx responses are not errors; callers inspect StatusCode.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error)
}

type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client backed by resty with the given timeout.
func NewRestyClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &restyClient{client: c}
}

// Get issues a GET request bound to ctx.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	return req.Get(url)
}
