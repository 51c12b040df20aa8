package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/logger"
	"github.com/i474232898/weather-news-mood/internal/upstream"
)

const (
	providerName   = "newsapi"
	defaultBaseURL = "https://newsapi.org/v2"
)

var messages = map[int]string{
	http.StatusUnauthorized:    "invalid NewsAPI key, check the key configured in preferences",
	http.StatusTooManyRequests: "NewsAPI rate limit exceeded, try again later",
}

// Options configures a Client.
type Options struct {
	Client     httpclient.Client
	BaseURL    string
	Country    string
	PageSize   int
	Restricted bool
	Backoff    upstream.BackoffConfig
	// Enricher, when set, fills gaps in merged category feeds.
	Enricher *Enricher
	Log      logger.Logger
	Now      func() time.Time
}

// Client talks to NewsAPI.org for a single API key.
type Client struct {
	apiKey string
	opts   Options
	caller *upstream.Caller
}

func NewClient(apiKey string, opts Options) *Client {
	if opts.Client == nil {
		opts.Client = httpclient.NewRestyClient(10 * time.Second)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Country == "" {
		opts.Country = "us"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff = upstream.DefaultBackoff
	}
	opts.Log = logger.Ensure(opts.Log)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		apiKey: apiKey,
		opts:   opts,
		caller: upstream.NewCaller(providerName, opts.Client, opts.Backoff),
	}
}

// useDemo mirrors the weather providers: demo data only in a restricted
// runtime without a key, and then upstream is never called.
func (c *Client) useDemo() bool {
	return c.opts.Restricted && strings.TrimSpace(c.apiKey) == ""
}

func (c *Client) demo() Response {
	c.opts.Log.InfoObj("using demo news feed, api key not set", "news_demo", nil)
	return okResponse(Demo(c.opts.Now()))
}

// TopHeadlines fetches headlines for one category.
func (c *Client) TopHeadlines(ctx context.Context, category Category) (Response, error) {
	if c.useDemo() {
		return c.demo(), nil
	}

	values := url.Values{}
	values.Set("category", string(category))
	values.Set("country", c.opts.Country)
	values.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	values.Set("apiKey", c.apiKey)

	return c.get(ctx, "top-headlines", values)
}

// Search runs a full-text query sorted by publication date.
func (c *Client) Search(ctx context.Context, query string) (Response, error) {
	if c.useDemo() {
		c.opts.Log.InfoObj("searching demo news feed", "news_demo", map[string]any{"query": query})
		return okResponse(searchDemo(c.opts.Now(), query)), nil
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("sortBy", "publishedAt")
	values.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	values.Set("apiKey", c.apiKey)

	return c.get(ctx, "everything", values)
}

// GetNewsByCategories fetches every category concurrently and merges the
// results in category order. Any failing category fails the whole call.
func (c *Client) GetNewsByCategories(ctx context.Context, categories []Category) (Response, error) {
	if c.useDemo() {
		return c.demo(), nil
	}
	if len(categories) == 0 {
		return Response{}, errors.New("at least one news category is required")
	}

	results := make([]Response, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		i, category := i, category
		g.Go(func() error {
			resp, err := c.TopHeadlines(gctx, category)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.opts.Log.WarnObj("news fetch failed", "news_fetch_error", map[string]any{
			"categories": categories,
			"error":      err.Error(),
		})
		return Response{}, err
	}

	articles := Merge(results...)
	if c.opts.Enricher != nil {
		articles = c.opts.Enricher.Enrich(ctx, articles)
	}

	c.opts.Log.DebugObj("news merged", "news_merged", map[string]any{
		"categories": len(categories),
		"articles":   len(articles),
	})
	return okResponse(articles), nil
}

func (c *Client) get(ctx context.Context, endpoint string, values url.Values) (Response, error) {
	u := fmt.Sprintf("%s/%s?%s", c.opts.BaseURL, endpoint, values.Encode())
	body, err := c.caller.Get(ctx, u, messages)
	if err != nil {
		return Response{}, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Response{}, upstream.DecodeError(providerName, err)
	}
	if resp.Articles == nil {
		resp.Articles = []Article{}
	}
	return resp, nil
}
