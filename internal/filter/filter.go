// Package filter decides which extracted tokens become output domains.
package filter

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/blocklist/internal/extract"
	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// Reason explains why a candidate was rejected
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonExcluded  Reason = "excluded_phrase"
	ReasonDuplicate Reason = "duplicate"
	ReasonCyrillic  Reason = "cyrillic"
)

// Filter applies the exclusion rules and global dedup
type Filter struct {
	phrases []string
	metrics *metrics.Metrics
}

// New returns a Filter rejecting any domain that contains one of phrases
func New(phrases []string, m *metrics.Metrics) *Filter {
	kept := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return &Filter{phrases: kept, metrics: m}
}

// Normalize trims a raw token and brings it to Unicode NFC
func Normalize(token string) string {
	return norm.NFC.String(strings.TrimSpace(token))
}

// ContainsCyrillic reports whether s has at least one Cyrillic rune
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

// Check returns the rejection reason for domain, or ok=true when it would be accepted.
// Checks run in order: empty, excluded phrase, duplicate, Cyrillic.
func (f *Filter) Check(domain string, set *DomainSet) (Reason, bool) {
	if domain == "" {
		return ReasonEmpty, false
	}
	for _, phrase := range f.phrases {
		if strings.Contains(domain, phrase) {
			return ReasonExcluded, false
		}
	}
	if set.Has(domain) {
		return ReasonDuplicate, false
	}
	if ContainsCyrillic(domain) {
		return ReasonCyrillic, false
	}
	return "", true
}

// Accept filters candidates against set, inserts the survivors into set and
// returns them in encounter order
func (f *Filter) Accept(candidates []string, set *DomainSet) []string {
	var accepted []string
	for _, raw := range candidates {
		domain := Normalize(raw)

		reason, ok := f.Check(domain, set)
		if !ok {
			f.metrics.Rejected(string(reason))
			if reason == ReasonCyrillic {
				log.Info().Str("domain", domain).Msg("Skipping domain with Cyrillic characters")
			}
			continue
		}

		set.Add(domain)
		accepted = append(accepted, domain)
	}

	f.metrics.Accepted(len(accepted))
	return accepted
}

// Extract runs ex over doc and returns the newly accepted domains
func Extract(doc *goquery.Document, ex extract.Extractor, f *Filter, set *DomainSet) []string {
	return f.Accept(ex.Candidates(doc), set)
}
