// Package app wires configuration, storage, the quote provider and the services
// into the components shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/alphavantage"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/cache"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/database"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/notify"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/repository"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/scheduler"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/yahoo"
)

// Job names as reported by the job status endpoint.
const (
	FetchJobName = "stock-data-fetch"
	AlertJobName = "alert-check"
)

// App holds the wired services over one database connection.
type App struct {
	DB      *sql.DB
	Quotes  *service.QuoteService
	Fetcher *service.FetcherService
	Alerts  *service.AlertService
	Reports *service.ReportService
	Stocks  *service.StockService
}

// New opens and migrates the database and builds every service from cfg.
// The caller owns the returned App and must Close it.
func New(cfg *config.Config) (*App, error) {
	provider, err := NewProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.Path); cfg.Database.Path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[INFO] connected to database: %s", cfg.Database.Path)

	return Wire(db, provider, NewNotifier(cfg.Email), service.FixedDelay(cfg.Jobs.FetchDelay)), nil
}

// Wire builds the services over an already migrated database.
func Wire(db *sql.DB, provider service.QuoteProvider, notifier service.NotificationSender, pacer service.Pacer) *App {
	watchlistRepo := repository.NewWatchlistRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	reportRepo := repository.NewReportRepository(db)

	quotes := service.NewQuoteService(provider, cache.NewQuoteCache())

	return &App{
		DB:      db,
		Quotes:  quotes,
		Fetcher: service.NewFetcherService(watchlistRepo, priceRepo, quotes, provider, pacer),
		Alerts:  service.NewAlertService(alertRepo, quotes, notifier),
		Reports: service.NewReportService(watchlistRepo, priceRepo, quotes, reportRepo),
		Stocks:  service.NewStockService(quotes, priceRepo),
	}
}

// NewProvider returns the quote provider selected by cfg.Name.
func NewProvider(cfg config.ProviderConfig) (service.QuoteProvider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Name {
	case config.ProviderAlphaVantage:
		opts := []alphavantage.Option{alphavantage.WithHTTPClient(httpClient)}
		if cfg.BaseURL != "" {
			opts = append(opts, alphavantage.WithBaseURL(cfg.BaseURL))
		}
		return alphavantage.NewClient(cfg.APIKey, opts...), nil
	case config.ProviderYahoo:
		opts := []yahoo.Option{yahoo.WithHTTPClient(httpClient)}
		if cfg.BaseURL != "" {
			opts = append(opts, yahoo.WithBaseURL(cfg.BaseURL))
		}
		return yahoo.NewFinanceClient(opts...), nil
	default:
		return nil, fmt.Errorf("unknown quote provider %q", cfg.Name)
	}
}

// NewNotifier returns an SMTP sender when mail is configured and a log sender otherwise.
func NewNotifier(cfg config.EmailConfig) service.NotificationSender {
	if !cfg.Enabled() {
		return notify.LogSender{}
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

// Jobs returns the fetch and alert jobs with the periods from cfg.
func (a *App) Jobs(cfg config.JobsConfig) []*scheduler.Job {
	fetch := scheduler.NewJob(FetchJobName, cfg.FetchInterval, func(ctx context.Context) error {
		_, err := a.Fetcher.FetchAll(ctx)
		return err
	})
	alerts := scheduler.NewJob(AlertJobName, cfg.AlertInterval, func(ctx context.Context) error {
		_, err := a.Alerts.EvaluateAll(ctx)
		return err
	})
	return []*scheduler.Job{fetch, alerts}
}

// Schedule registers the jobs from Jobs with s. Only the fetch job gets the
// initial pass at start, and only when cfg.RunOnStart is set.
func (a *App) Schedule(s *scheduler.Scheduler, cfg config.JobsConfig) error {
	for _, job := range a.Jobs(cfg) {
		runOnStart := cfg.RunOnStart && job.Name() == FetchJobName
		if err := s.Add(job, runOnStart); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (a *App) Close() error {
	return a.DB.Close()
}
