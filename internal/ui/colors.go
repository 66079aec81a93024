package ui

import (
	"fmt"
	"time"

	"github.com/law-makers/blocklist/pkg/models"
)

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

// SummaryLine renders the end-of-run report shown after a crawl
func SummaryLine(s *models.Summary) string {
	status := Success("done")
	if s.Interrupted {
		status = Info("interrupted")
	}
	took := (time.Duration(s.Duration) * time.Millisecond).Round(time.Second)
	return fmt.Sprintf("%s %s domains from %d/%d pages (%d skipped) -> %s in %s",
		status,
		Bold(fmt.Sprint(s.DomainsFound)),
		s.PagesFetched, s.MaxPages, s.PagesSkipped,
		s.OutputPath, took)
}
