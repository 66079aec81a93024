// Package fetcher downloads listing pages and parses them into goquery documents.
package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/law-makers/blocklist/internal/ratelimit"
	"github.com/law-makers/blocklist/internal/retry"
	"github.com/law-makers/blocklist/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Fetcher retrieves one page and returns its parsed document
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Page is a fetched and parsed listing page. It is owned by the caller and
// discarded once its links have been extracted.
type Page struct {
	models.PageData
	Doc *goquery.Document
}

// Options configures an HTTPFetcher
type Options struct {
	UserAgent string
	Headers   http.Header
	Retry     retry.Config
	Limiter   ratelimit.RateLimiter
	Metrics   *metrics.Metrics
}

// HTTPFetcher issues GET requests with a fixed identity header and retries
// failed attempts according to its retry policy
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	headers   http.Header
	retry     retry.Config
	limiter   ratelimit.RateLimiter
	metrics   *metrics.Metrics
}

// New creates an HTTPFetcher; a nil client falls back to http.DefaultClient
func New(client *http.Client, opts Options) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = retry.DefaultConfig()
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		retry:     opts.Retry,
		limiter:   opts.Limiter,
		metrics:   opts.Metrics,
	}
}

// Name returns the name of this fetcher
func (f *HTTPFetcher) Name() string {
	return "HTTPFetcher"
}

// Fetch retrieves and parses the page at url. Every failed attempt is logged;
// once the retry budget is spent the last failure is returned wrapped in retry.ErrExhausted.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	var page *Page
	err := retry.WithRetry(ctx, f.retry, func() error {
		p, err := f.fetch(ctx, url)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, url string) (*Page, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	log.Debug().
		Str("url", url).
		Str("fetcher", f.Name()).
		Msg("Starting fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFetchError(ErrCodeInvalidURL, url, err)
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "uk,en-US;q=0.9,en;q=0.8")
	for key, values := range f.headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.ObserveFetch("network_error", time.Since(start))
		return nil, NewFetchError(ErrCodeNetwork, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		f.metrics.ObserveFetch("bad_status", time.Since(start))
		fe := NewFetchError(ErrCodeBadStatus, url, nil)
		fe.StatusCode = resp.StatusCode
		return nil, fe
	}

	// A connection dropped mid-body is a transport failure and gets retried
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		f.metrics.ObserveFetch("network_error", time.Since(start))
		return nil, NewFetchError(ErrCodeNetwork, url, err)
	}

	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		f.metrics.ObserveFetch("parse_error", time.Since(start))
		return nil, NewFetchError(ErrCodeParse, url, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		f.metrics.ObserveFetch("parse_error", time.Since(start))
		return nil, NewFetchError(ErrCodeParse, url, err)
	}

	elapsed := time.Since(start)
	f.metrics.ObserveFetch("ok", elapsed)

	page := &Page{
		PageData: models.PageData{
			URL:          url,
			StatusCode:   resp.StatusCode,
			FetchedAt:    time.Now(),
			ResponseTime: elapsed.Milliseconds(),
		},
		Doc: doc,
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Fetch completed")

	return page, nil
}
