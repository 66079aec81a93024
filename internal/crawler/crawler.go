// Package crawler drives the page loop: fetch, extract, filter, batch and flush.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/law-makers/blocklist/internal/extract"
	"github.com/law-makers/blocklist/internal/fetcher"
	"github.com/law-makers/blocklist/internal/filter"
	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/law-makers/blocklist/internal/reqctx"
	"github.com/law-makers/blocklist/internal/robots"
	"github.com/law-makers/blocklist/internal/sink"
	urlutil "github.com/law-makers/blocklist/internal/utils/url"
	"github.com/law-makers/blocklist/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of pages between two flushes
const DefaultBatchSize = 50

// Discoverer returns the number of pages to visit
type Discoverer interface {
	MaxPage(ctx context.Context) int
}

// RobotsChecker gates the crawl on robots.txt
type RobotsChecker interface {
	Allowed(ctx context.Context, targetURL string) (bool, error)
}

// Pauser spaces out page requests
type Pauser interface {
	Pause(ctx context.Context) error
}

// Progress is advanced once per visited page
type Progress interface {
	ChangeMax(max int)
	Add(n int) error
}

// Deps are the components a Crawler calls synchronously
type Deps struct {
	Fetcher    fetcher.Fetcher
	Discoverer Discoverer
	Extractor  extract.Extractor
	Filter     *filter.Filter
	Sink       sink.Sink
	Delay      Pauser
	Robots     RobotsChecker
	Metrics    *metrics.Metrics
}

// Options tune a run
type Options struct {
	BaseURL    string
	OutputPath string
	BatchSize  int
	MaxPages   int // skips discovery when > 0
}

// State is the mutable crawl state. It belongs to a single Run and is never shared.
type State struct {
	Page     int
	MaxPages int
	Domains  *filter.DomainSet
	Pending  *sink.PendingBatch

	Fetched int
	Skipped int
	Flushes int
}

func NewState() *State {
	return &State{
		Domains: filter.NewDomainSet(),
		Pending: sink.NewPendingBatch(),
	}
}

// Result is what a run hands back to its caller
type Result struct {
	Domains *filter.DomainSet
	Summary models.Summary
}

// Crawler runs the page loop. It is not safe for concurrent use.
type Crawler struct {
	deps     Deps
	opts     Options
	progress Progress
}

func New(deps Deps, opts Options) *Crawler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.NewListing()
	}
	return &Crawler{deps: deps, opts: opts}
}

// SetProgress attaches a progress indicator
func (c *Crawler) SetProgress(p Progress) {
	c.progress = p
}

// Run crawls pages 1..max. Cancelling ctx stops before the next fetch; pending
// domains are flushed the same way as on normal completion and no error is
// returned. Only a persistence failure (or a robots.txt refusal) is an error.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	state := NewState()
	result := &Result{Domains: state.Domains}

	err := c.run(ctx, state)

	interrupted := err == nil && ctx.Err() != nil
	if interrupted {
		log.Info().Int("page", state.Page).Msg("Crawl interrupted by operator")
	}

	if err == nil && state.Pending.Len() > 0 {
		if interrupted {
			log.Info().Int("pending", state.Pending.Len()).Msg("Saving remaining domains before exit")
		}
		err = c.flush(state)
	}

	finished := time.Now()
	result.Summary = models.Summary{
		RunID:        reqctx.FromContext(ctx).RunID,
		BaseURL:      c.opts.BaseURL,
		OutputPath:   c.opts.OutputPath,
		MaxPages:     state.MaxPages,
		PagesFetched: state.Fetched,
		PagesSkipped: state.Skipped,
		DomainsFound: state.Domains.Len(),
		Flushes:      state.Flushes,
		Interrupted:  interrupted,
		StartedAt:    started,
		FinishedAt:   finished,
		Duration:     finished.Sub(started).Milliseconds(),
	}

	if err != nil {
		log.Error().Err(err).Int("page", state.Page).Msg("Crawl aborted")
		return result, err
	}

	log.Info().
		Int("domains", state.Domains.Len()).
		Int("pages_fetched", state.Fetched).
		Int("pages_skipped", state.Skipped).
		Str("output", c.opts.OutputPath).
		Msg("Crawl finished")
	return result, nil
}

func (c *Crawler) run(ctx context.Context, state *State) error {
	if c.deps.Robots != nil {
		first := urlutil.PageURL(c.opts.BaseURL, 1)
		ok, err := c.deps.Robots.Allowed(ctx, first)
		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("robots.txt check failed, continuing")
		}
		if err == nil && !ok {
			return fmt.Errorf("%w: %s", robots.ErrDisallowed, first)
		}
	}

	state.MaxPages = c.opts.MaxPages
	if state.MaxPages <= 0 {
		state.MaxPages = c.deps.Discoverer.MaxPage(ctx)
	}
	c.deps.Metrics.SetMaxPages(state.MaxPages)
	if c.progress != nil {
		c.progress.ChangeMax(state.MaxPages)
	}

	for state.Page = 1; state.Page <= state.MaxPages; state.Page++ {
		if ctx.Err() != nil {
			return nil
		}

		ok := c.crawlPage(ctx, state)
		if c.progress != nil {
			_ = c.progress.Add(1)
		}
		if !ok {
			continue
		}

		if state.Page%c.opts.BatchSize == 0 {
			if err := c.flush(state); err != nil {
				return err
			}
		}

		if c.deps.Delay != nil {
			if err := c.deps.Delay.Pause(ctx); err != nil {
				// only cancellation interrupts a pause; the loop head sees it
				continue
			}
		}
	}
	return nil
}

// crawlPage fetches and extracts one page and reports whether it succeeded
func (c *Crawler) crawlPage(ctx context.Context, state *State) bool {
	url := urlutil.PageURL(c.opts.BaseURL, state.Page)
	log.Info().Int("page", state.Page).Str("url", url).Msg("Opening page")

	page, err := c.deps.Fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		state.Skipped++
		c.deps.Metrics.PageDone("skipped")
		log.Info().Err(err).Int("page", state.Page).Msg("Skipping page after fetch failure")
		return false
	}

	accepted := filter.Extract(page.Doc, c.deps.Extractor, c.deps.Filter, state.Domains)
	state.Pending.Append(accepted...)
	state.Fetched++
	c.deps.Metrics.PageDone("ok")

	log.Info().
		Int("page", state.Page).
		Int("new_domains", len(accepted)).
		Int("total_domains", state.Domains.Len()).
		Msg("Page processed")
	return true
}

func (c *Crawler) flush(state *State) error {
	if state.Pending.Len() == 0 {
		return nil
	}
	if err := c.deps.Sink.Flush(state.Pending); err != nil {
		return err
	}
	state.Flushes++
	return nil
}
