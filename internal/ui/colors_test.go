package ui

import (
	"strings"
	"testing"

	"github.com/law-makers/blocklist/pkg/models"
)

func TestSummaryLine(t *testing.T) {
	s := &models.Summary{
		OutputPath:   "blocked_domains.txt",
		MaxPages:     800,
		PagesFetched: 798,
		PagesSkipped: 2,
		DomainsFound: 1234,
		Duration:     65_400,
	}

	line := SummaryLine(s)
	for _, want := range []string{"done", Bold("1234"), "798/800", "2 skipped", "blocked_domains.txt", "1m5s"} {
		if !strings.Contains(line, want) {
			t.Errorf("summary line %q missing %q", line, want)
		}
	}

	s.Interrupted = true
	if line := SummaryLine(s); !strings.Contains(line, "interrupted") {
		t.Errorf("expected interrupted marker in %q", line)
	}
}
