// Package metrics exposes Prometheus counters for the crawl pipeline.
// Every method is safe to call on a nil *Metrics so components can run without a registry.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Metrics struct {
	// Fetcher
	FetchRequests *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Orchestrator
	Pages    *prometheus.CounterVec
	MaxPages prometheus.Gauge

	// Filter
	DomainsAccepted prometheus.Counter
	DomainsRejected *prometheus.CounterVec

	// Sink
	Flushes        *prometheus.CounterVec
	DomainsFlushed prometheus.Counter
}

// New registers the crawler metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FetchRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocklist_fetch_requests_total",
				Help: "HTTP requests issued to the listing site, by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blocklist_fetch_duration_seconds",
				Help:    "Time taken to download and parse a listing page",
				Buckets: prometheus.DefBuckets,
			},
		),
		Pages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocklist_pages_total",
				Help: "Listing pages handled by the crawler, by result",
			},
			[]string{"result"},
		),
		MaxPages: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "blocklist_max_pages",
				Help: "Number of pages the current run will visit",
			},
		),
		DomainsAccepted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "blocklist_domains_accepted_total",
				Help: "Domains that passed every filter",
			},
		),
		DomainsRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocklist_domains_rejected_total",
				Help: "Candidate domains rejected by the filter, by reason",
			},
			[]string{"reason"},
		),
		Flushes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocklist_flushes_total",
				Help: "Batch flushes to the output file, by result",
			},
			[]string{"result"},
		),
		DomainsFlushed: f.NewCounter(
			prometheus.CounterOpts{
				Name: "blocklist_domains_flushed_total",
				Help: "Domains appended to the output file",
			},
		),
	}
}

func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchRequests.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) PageDone(result string) {
	if m == nil {
		return
	}
	m.Pages.WithLabelValues(result).Inc()
}

func (m *Metrics) SetMaxPages(n int) {
	if m == nil {
		return
	}
	m.MaxPages.Set(float64(n))
}

func (m *Metrics) Accepted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.DomainsAccepted.Add(float64(n))
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.DomainsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Flushed(n int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Flushes.WithLabelValues("error").Inc()
		return
	}
	m.Flushes.WithLabelValues("ok").Inc()
	m.DomainsFlushed.Add(float64(n))
}

// Serve exposes /metrics on addr until ctx is done
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Metrics server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
