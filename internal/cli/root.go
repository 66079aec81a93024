package cli

import (
	"context"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/law-makers/blocklist/internal/app"
	"github.com/law-makers/blocklist/internal/config"
	"github.com/law-makers/blocklist/internal/reqctx"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "0.1.0"

// newRootCmd builds the blocklist command. Tests build a fresh one per case.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocklist [flags]",
		Short: "Collect blocked domains from the uablocklist.com registry",
		Long: heredoc.Doc(`
			Walks every page of the public blocklist registry, extracts the listed
			domains and appends the new ones to a plain-text file, one per line.

			Entries in excluded categories and Cyrillic domains are skipped.
			Domains are written every 50 pages and once more at the end, so an
			interrupted run (Ctrl+C) keeps everything collected so far.
		`),
		Example: heredoc.Doc(`
			# Crawl the whole registry into blocked_domains.txt
			blocklist

			# Write somewhere else and show a progress bar
			blocklist -o /var/lib/blocklist/domains.txt --progress

			# Quick check against the first 3 pages, summary as JSON
			blocklist --max-pages 3 --json

			# Expose Prometheus metrics while crawling
			blocklist --metrics-addr :9190 --log-file logs/blocklist.log
		`),
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCrawl,
	}

	// Initialize the application lazily so -h and --version never touch the network
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = reqctx.WithRunContext(ctx)
		cmd.SetContext(ctx)

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	config.RegisterFlags(cmd)

	cmd.Flags().BoolP("help", "h", false, "Help for blocklist")
	cmd.Flags().Bool("version", false, "Version for blocklist")
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(customHelpFunc)
	cmd.SetUsageFunc(customUsageFunc)

	return cmd
}

// ExecuteContext runs the root command. Cancelling ctx interrupts the crawl,
// which still flushes the domains collected so far.
func ExecuteContext(ctx context.Context) error {
	root := newRootCmd()
	err := root.ExecuteContext(ctx)

	// Release the app even when the crawl failed
	if a := GetAppFromCmd(root); a != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
