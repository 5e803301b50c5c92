package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/app"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/version"
)

// opener builds the App for one command. A non-nil override replaces the
// configured fetch delay.
type opener func(override *config.JobsConfig) (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "marketctl",
		Short:         "Run watchlist monitor passes by hand",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(fetchCmd(open))
	rootCmd.AddCommand(alertsCmd(open))
	rootCmd.AddCommand(reportCmd(open))
	rootCmd.AddCommand(backfillCmd(open))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func fetchCmd(open opener) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one fetch pass over every active ticker",
		Long: `Fetch the current quote of every ticker on an active watchlist and store
one price bar per ticker. Tickers are fetched one at a time with a delay between
them to respect the provider's rate limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override *config.JobsConfig
			if cmd.Flags().Changed("delay") {
				if err := config.ValidateFetchDelay(delay); err != nil {
					return err
				}
				override = &config.JobsConfig{FetchDelay: delay}
			}

			a, err := open(override)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Fetcher.FetchAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "tickers: %d, updated: %d, failed: %d (%s)\n",
				result.Tickers, result.Updated, result.Failed, result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "Override the delay between tickers (at least "+config.MinFetchDelay.String()+")")
	return cmd
}

func alertsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Run one alert evaluation pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Alerts.EvaluateAll(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "checked: %d, triggered: %d, skipped: %d, failed: %d\n",
				result.Checked, result.Triggered, result.Skipped, result.Failed)
			return nil
		},
	}
}

func reportCmd(open opener) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report <watchlist-id>",
		Short: "Generate and store a performance report for a watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" && output != "text" {
				return fmt.Errorf("unknown output format %q (use text, json or yaml)", output)
			}

			a, err := open(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Reports.GenerateReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeReport(cmd.OutOrStdout(), report, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func backfillCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill <ticker>",
		Short: "Store the provider's daily history for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Fetcher.Backfill(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stored %d daily bars\n", n)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "marketctl", version.Version)
		},
	}
}

func writeReport(w io.Writer, report model.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		// Go through JSON so nullable fields render as values or null.
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	s := report.Summary
	fmt.Fprintf(w, "Report %s for %q (%s to %s)\n", report.ID, report.WatchlistName,
		report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Stocks: %d  Value: %.2f  Change: %.2f (%.2f%%)\n",
		s.TotalStocks, s.TotalPortfolioValue, s.TotalPortfolioChange, s.TotalPortfolioChangePercent)
	if s.BestPerformer != nil {
		fmt.Fprintf(w, "Best:  %s %.2f%%\n", s.BestPerformer.Ticker, s.BestPerformer.ChangePercent)
	}
	if s.WorstPerformer != nil {
		fmt.Fprintf(w, "Worst: %s %.2f%%\n", s.WorstPerformer.Ticker, s.WorstPerformer.ChangePercent)
	}
	for _, p := range report.StockPerformances {
		fmt.Fprintf(w, "  %-8s %10s %10s %8s\n", p.Ticker, formatNull(p.EntryPrice.Ptr()),
			formatNull(p.CurrentPrice.Ptr()), formatNull(p.ChangePercent.Ptr()))
	}
	return nil
}

func formatNull(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
