package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/blocklist/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// The first Ctrl+C interrupts the crawl and domains collected so far are
	// still saved. A second one falls through to the default handler.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finished := make(chan struct{})
	defer close(finished)

	go func() {
		select {
		case <-ctx.Done():
			stop()
			log.Warn().Msg("Interrupt received, saving collected domains...")
		case <-finished:
		}
	}()

	return cli.ExecuteContext(ctx)
}
