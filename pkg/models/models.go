package models

import "time"

// PageData describes one fetched listing page
type PageData struct {
	URL          string    `json:"url"`
	Number       int       `json:"number,omitempty"`
	StatusCode   int       `json:"status_code"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// Summary is the outcome of a single crawl run
type Summary struct {
	RunID        string    `json:"run_id"`
	BaseURL      string    `json:"base_url"`
	OutputPath   string    `json:"output_path"`
	MaxPages     int       `json:"max_pages"`
	PagesFetched int       `json:"pages_fetched"`
	PagesSkipped int       `json:"pages_skipped"`
	DomainsFound int       `json:"domains_found"`
	Flushes      int       `json:"flushes"`
	Interrupted  bool      `json:"interrupted"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Duration     int64     `json:"duration_ms"`
}
