package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/law-makers/blocklist/internal/crawler"
	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/law-makers/blocklist/internal/ui"
	"github.com/law-makers/blocklist/internal/utils/output"
)

func runCrawl(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config
	ctx := cmd.Context()

	if cfg.Progress {
		bar := newProgressBar()
		a.Crawler.SetProgress(bar)
		defer bar.Finish()
	}

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()

	var (
		g      errgroup.Group
		result *crawler.Result
	)

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			// A broken metrics endpoint must not stop the crawl
			if err := metrics.Serve(metricsCtx, cfg.MetricsAddr, a.Registry); err != nil {
				log.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("Metrics server failed")
			}
			return nil
		})
	}

	g.Go(func() error {
		defer stopMetrics()
		var err error
		result, err = a.Crawler.Run(ctx)
		return err
	})

	runErr := g.Wait()
	if result == nil {
		return runErr
	}

	if err := reportSummary(cmd, cfg.JSONSummary, cfg.SummaryPath, result); err != nil {
		log.Error().Err(err).Msg("Failed to write run summary")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func reportSummary(cmd *cobra.Command, asJSON bool, path string, result *crawler.Result) error {
	s := &result.Summary

	if path != "" {
		if err := output.SaveSummary(s, path); err != nil {
			return fmt.Errorf("save summary %s: %w", path, err)
		}
		log.Info().Str("path", path).Msg("Summary saved")
	}

	if asJSON {
		return output.WriteSummary(cmd.OutOrStdout(), s)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), ui.SummaryLine(s))
	return err
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Crawling pages"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
}
