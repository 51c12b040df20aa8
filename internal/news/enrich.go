package news

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-news-mood/internal/httpclient"
	"github.com/i474232898/weather-news-mood/internal/logger"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxEnrichWorkers = 8
)

// Enricher fills a missing image or description from the article page's
// OpenGraph metadata. Failures leave the article untouched.
type Enricher struct {
	client httpclient.Client
	log    logger.Logger
}

func NewEnricher(client httpclient.Client, log logger.Logger) *Enricher {
	return &Enricher{client: client, log: logger.Ensure(log)}
}

// Enrich returns a copy of articles with gaps filled where possible.
func (e *Enricher) Enrich(ctx context.Context, articles []Article) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxEnrichWorkers)
	for i, a := range articles {
		if !needsEnrichment(a) {
			continue
		}
		i, a := i, a
		g.Go(func() error {
			enriched, err := e.enrichOne(gctx, a)
			if err != nil {
				e.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
					"url":   a.URL,
					"error": err.Error(),
				})
				return nil
			}
			out[i] = enriched
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func needsEnrichment(a Article) bool {
	return a.URL != "" && (strings.TrimSpace(a.URLToImage) == "" || strings.TrimSpace(a.Description) == "")
}

func (e *Enricher) enrichOne(ctx context.Context, a Article) (Article, error) {
	resp, err := e.client.Get(ctx, a.URL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return a, fmt.Errorf("http fetch: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return a, fmt.Errorf("status %d", resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return a, err
	}
	if strings.TrimSpace(a.Description) == "" {
		a.Description = meta.Description
	}
	if strings.TrimSpace(a.URLToImage) == "" && meta.ImageURL != "" {
		a.URLToImage = resolveURL(meta.ImageURL, a.URL)
	}
	return a, nil
}

type pageMeta struct {
	Description string
	ImageURL    string
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: firstNonEmpty(
			extract(`meta[property="og:image"]`),
			extract(`meta[name="twitter:image"]`),
		),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveURL resolves a possibly relative URL against the article URL.
func resolveURL(raw, base string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.IsAbs() {
		return raw
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}
