// Command marketctl runs single pipeline passes and reports from the command line,
// against the same database and provider the server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/app"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(openApp)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// openApp loads the configuration and wires the services.
func openApp(delayOverride *config.JobsConfig) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if delayOverride != nil {
		cfg.Jobs.FetchDelay = delayOverride.FetchDelay
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.New(cfg)
}
