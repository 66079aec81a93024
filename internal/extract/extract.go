// Package extract holds the listing site's CSS selectors and href layout.
package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Extractor turns a parsed listing page into raw domain candidates and pagination labels
type Extractor interface {
	// Candidates returns the domain token of every detail link, in document order
	Candidates(doc *goquery.Document) []string

	// PageNumbers returns every pagination label that parses as an integer
	PageNumbers(doc *goquery.Document) []int
}

// Listing is the Extractor for the blocklist listing markup
type Listing struct {
	DomainSelector     string
	PaginationSelector string
	DetailMarker       string
}

// NewListing returns the Extractor matching the current site layout
func NewListing() *Listing {
	return &Listing{
		DomainSelector:     "a[href*='/blocklist/']",
		PaginationSelector: "a.page-link[href*='blocklist?page=']",
		DetailMarker:       "/blocklist/",
	}
}

// Candidates implements Extractor
func (l *Listing) Candidates(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}

	var out []string
	doc.Find(l.DomainSelector).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if token := DomainToken(href, l.DetailMarker); token != "" {
			out = append(out, token)
		}
	})
	return out
}

// PageNumbers implements Extractor. Labels such as "»" or "Next" are skipped.
func (l *Listing) PageNumbers(doc *goquery.Document) []int {
	if doc == nil {
		return nil
	}

	var out []int
	doc.Find(l.PaginationSelector).Each(func(i int, sel *goquery.Selection) {
		label := strings.TrimSpace(sel.Text())
		n, err := strconv.Atoi(label)
		if err != nil {
			log.Debug().Str("label", label).Msg("Ignoring non-numeric pagination label")
			return
		}
		out = append(out, n)
	})
	return out
}

// DomainToken returns the final path segment after marker, e.g.
// "/blocklist/example.com?ref=1" -> "example.com". Percent-encoded
// segments are decoded; an undecodable one is returned as is.
func DomainToken(href, marker string) string {
	idx := strings.LastIndex(href, marker)
	if idx < 0 {
		return ""
	}
	rest := href[idx+len(marker):]

	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimRight(rest, "/")
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}

	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}
	return strings.TrimSpace(rest)
}
