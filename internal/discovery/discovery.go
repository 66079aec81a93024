// Package discovery works out how many listing pages to crawl.
package discovery

import (
	"context"

	"github.com/law-makers/blocklist/internal/extract"
	"github.com/law-makers/blocklist/internal/fetcher"
	"github.com/rs/zerolog/log"
)

// DefaultMaxPage is used when page 1 cannot be fetched and acts as a floor otherwise
const DefaultMaxPage = 800

// Discoverer reads the pagination of the first listing page
type Discoverer struct {
	fetcher   fetcher.Fetcher
	extractor extract.Extractor
	firstPage string
	fallback  int
}

// New returns a Discoverer; fallback <= 0 selects DefaultMaxPage
func New(f fetcher.Fetcher, ex extract.Extractor, firstPageURL string, fallback int) *Discoverer {
	if fallback <= 0 {
		fallback = DefaultMaxPage
	}
	return &Discoverer{
		fetcher:   f,
		extractor: ex,
		firstPage: firstPageURL,
		fallback:  fallback,
	}
}

// MaxPage returns the highest pagination label on page 1, never less than the fallback
func (d *Discoverer) MaxPage(ctx context.Context) int {
	page, err := d.fetcher.Fetch(ctx, d.firstPage)
	if err != nil && ctx.Err() != nil {
		log.Info().Msg("Page count discovery interrupted")
		return d.fallback
	}
	if err != nil {
		log.Info().
			Err(err).
			Int("pages", d.fallback).
			Msg("Could not load the first page, using the default page count")
		return d.fallback
	}

	maxPage := d.fallback
	for _, n := range d.extractor.PageNumbers(page.Doc) {
		maxPage = max(maxPage, n)
	}

	log.Info().Int("pages", maxPage).Msg("Discovered pages to crawl")
	return maxPage
}
