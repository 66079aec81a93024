// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/law-makers/blocklist/internal/config"
	"github.com/law-makers/blocklist/internal/crawler"
	"github.com/law-makers/blocklist/internal/discovery"
	"github.com/law-makers/blocklist/internal/extract"
	"github.com/law-makers/blocklist/internal/fetcher"
	"github.com/law-makers/blocklist/internal/filter"
	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/law-makers/blocklist/internal/proxy"
	"github.com/law-makers/blocklist/internal/ratelimit"
	"github.com/law-makers/blocklist/internal/reqctx"
	"github.com/law-makers/blocklist/internal/retry"
	"github.com/law-makers/blocklist/internal/robots"
	"github.com/law-makers/blocklist/internal/sink"
	"github.com/law-makers/blocklist/internal/utils/headers"
	urlutil "github.com/law-makers/blocklist/internal/utils/url"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per run by the CLI. Use Close() to release the HTTP
// connections and the log file.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     *fetcher.HTTPFetcher
	Sink        *sink.FileSink
	Crawler     *crawler.Crawler
	logCloser   io.Closer
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures the global zerolog logger (console/JSON, optional rotated file)
//   - Creates the Prometheus registry and crawl metrics
//   - Creates the per-host rate limiter and the HTTP client (timeout, proxy rotation)
//   - Wires fetcher, discovery, extractor, filter and sink into the crawler
//
// ctx should carry a reqctx.RunContext; its run id is attached to every log line.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger, logCloser, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With().Str("run_id", reqctx.FromContext(ctx).RunID).Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("log_file", cfg.LogFile).
		Msg("Logger initialized")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	rateLimiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	var rt http.RoundTripper = transport
	if cfg.Proxy != "" {
		proxies, err := proxy.ParseList(cfg.Proxy)
		if err != nil {
			logCloser.Close()
			return nil, fmt.Errorf("invalid proxy %q: %w", cfg.Proxy, err)
		}
		rt = proxy.NewPool(proxies, proxy.DefaultCooldown).Wrap(transport)
		logger.Debug().Int("proxies", len(proxies)).Msg("Proxy rotation enabled")
	}
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: rt,
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Str("proxy", cfg.Proxy).
		Msg("HTTP client initialized")

	extra, err := headers.ParseHeaders(cfg.Headers)
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring malformed headers")
	}

	f := fetcher.New(httpClient, fetcher.Options{
		UserAgent: cfg.UserAgent,
		Headers:   extra,
		Retry:     retry.Fixed(cfg.MaxAttempts, cfg.RetryDelay),
		Limiter:   rateLimiter,
		Metrics:   m,
	})

	listing := extract.NewListing()
	fileSink := sink.NewFileSink(cfg.OutputPath, m)

	deps := crawler.Deps{
		Fetcher:    f,
		Discoverer: discovery.New(f, listing, urlutil.PageURL(cfg.BaseURL, 1), cfg.DefaultPages),
		Extractor:  listing,
		Filter:     filter.New(cfg.ExcludePhrases, m),
		Sink:       fileSink,
		Delay:      ratelimit.NewJitter(cfg.MinDelay, cfg.MaxDelay),
		Metrics:    m,
	}
	if cfg.RespectRobots {
		deps.Robots = robots.NewChecker(httpClient, cfg.UserAgent)
	}

	c := crawler.New(deps, crawler.Options{
		BaseURL:    cfg.BaseURL,
		OutputPath: cfg.OutputPath,
		BatchSize:  cfg.BatchSize,
		MaxPages:   cfg.MaxPages,
	})

	a := &Application{
		Config:      cfg,
		Logger:      &logger,
		Registry:    registry,
		Metrics:     m,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Fetcher:     f,
		Sink:        fileSink,
		Crawler:     c,
		logCloser:   logCloser,
		startTime:   time.Now(),
	}

	logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("output", cfg.OutputPath).
		Int("batch_size", cfg.BatchSize).
		Msg("Application initialized")
	return a, nil
}

// Close releases idle HTTP connections and the log file.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")

	if a.logCloser != nil {
		return a.logCloser.Close()
	}
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
