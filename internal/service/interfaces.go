package service

import (
	"context"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// QuoteProvider fetches market data from a third-party API.
// Malformed or empty provider payloads are reported as a nil quote or an empty
// series with a nil error; an error means the call itself failed.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, ticker string) (*model.Quote, error)
	FetchDailySeries(ctx context.Context, ticker string) ([]model.PriceBar, error)
	Name() string
}

// QuoteSource returns the current quote for a ticker, consulting the cache first.
type QuoteSource interface {
	GetQuote(ctx context.Context, ticker string) (*model.Quote, error)
}

// PriceStore is the time-series store of price bars.
type PriceStore interface {
	UpsertBar(ctx context.Context, bar model.PriceBar) error
	UpsertBars(ctx context.Context, bars []model.PriceBar) (int, error)
	QueryBars(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error)
	EarliestBarSince(ctx context.Context, ticker string, since time.Time) (*model.PriceBar, error)
}

// WatchlistStore reads watchlists and their stocks.
type WatchlistStore interface {
	GetWatchlist(ctx context.Context, watchlistID string) (model.Watchlist, error)
	GetWatchlistStocks(ctx context.Context, watchlistID string) ([]model.WatchlistStock, error)
	ListActiveTickers(ctx context.Context) ([]string, error)
}

// AlertStore loads pending alerts and performs their one-time trigger transition.
type AlertStore interface {
	ListActiveAlerts(ctx context.Context) ([]model.ActiveAlert, error)
	MarkTriggered(ctx context.Context, alertID string, at time.Time) error
}

// ReportStore persists generated reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report model.Report) (model.Report, error)
	ListReports(ctx context.Context, watchlistID string) ([]model.Report, error)
	GetReport(ctx context.Context, reportID string) (model.Report, error)
}

// NotificationSender delivers a message to a recipient.
type NotificationSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
