package filter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/blocklist/internal/config"
	"github.com/law-makers/blocklist/internal/extract"
)

func newDefaultFilter() *Filter {
	return New(config.DefaultExcludePhrases, nil)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtract_Example(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/blocklist/example.com">1</a>
		<a href="/blocklist/тест.ua">2</a>
		<a href="/blocklist/blocked-sites-casinos-foo.com">3</a>
	</body></html>`)

	set := NewDomainSet()
	got := Extract(doc, extract.NewListing(), newDefaultFilter(), set)

	if want := []string{"example.com"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("accepted = %q, want %q", got, want)
	}
	if set.Len() != 1 || !set.Has("example.com") {
		t.Errorf("set should contain only example.com, got %q", set.Items())
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<a href="/blocklist/a.com">a</a>
		<a href="/blocklist/b.com">b</a>
		<a href="/blocklist/a.com">a again</a>
	</body></html>`)

	set := NewDomainSet()
	f := newDefaultFilter()

	first := Extract(doc, extract.NewListing(), f, set)
	if want := []string{"a.com", "b.com"}; !reflect.DeepEqual(first, want) {
		t.Fatalf("first pass = %q, want %q", first, want)
	}

	if second := Extract(doc, extract.NewListing(), f, set); len(second) != 0 {
		t.Errorf("second pass should accept nothing, got %q", second)
	}
	if set.Len() != 2 {
		t.Errorf("set size = %d, want 2", set.Len())
	}
}

func TestCheck_Reasons(t *testing.T) {
	set := NewDomainSet()
	set.Add("seen.com")
	f := newDefaultFilter()

	cases := []struct {
		domain string
		reason Reason
		ok     bool
	}{
		{"", ReasonEmpty, false},
		{"pirates-bay.net", ReasonExcluded, false},
		{"blocked-sites-russian", ReasonExcluded, false},
		{"seen.com", ReasonDuplicate, false},
		{"пример.укр", ReasonCyrillic, false},
		{"mixedї.com", ReasonCyrillic, false},
		{"fresh.com", "", true},
	}

	for _, tc := range cases {
		reason, ok := f.Check(tc.domain, set)
		if reason != tc.reason || ok != tc.ok {
			t.Errorf("Check(%q) = (%q, %v), want (%q, %v)", tc.domain, reason, ok, tc.reason, tc.ok)
		}
	}
}

func TestAccept_Invariants(t *testing.T) {
	candidates := []string{
		"one.com", " one.com ", "two.org", "тест.ua", "pirates.io",
		"blocked-sites-bookmakers-x.com", "", "three.net", "two.org",
	}

	set := NewDomainSet()
	f := newDefaultFilter()
	f.Accept(candidates, set)

	seen := map[string]bool{}
	for _, d := range set.Items() {
		if seen[d] {
			t.Errorf("duplicate %q in set", d)
		}
		seen[d] = true
		if d == "" || ContainsCyrillic(d) {
			t.Errorf("invalid domain %q in set", d)
		}
		for _, p := range f.phrases {
			if strings.Contains(d, p) {
				t.Errorf("domain %q contains excluded phrase %q", d, p)
			}
		}
	}

	if want := []string{"one.com", "two.org", "three.net"}; !reflect.DeepEqual(set.Items(), want) {
		t.Errorf("set = %q, want %q", set.Items(), want)
	}
}

func TestNormalize(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune
	if got := Normalize(" cafe\u0301.fr "); got != "caf\u00e9.fr" {
		t.Errorf("Normalize returned %q", got)
	}
}

func TestNew_DropsBlankPhrases(t *testing.T) {
	f := New([]string{"", "  ", "casino"}, nil)
	if len(f.phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %q", f.phrases)
	}
	if _, ok := f.Check("anything.com", NewDomainSet()); !ok {
		t.Error("blank phrases must not match everything")
	}
}
