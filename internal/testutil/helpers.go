package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/cache"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/repository"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
)

// NewTestQuoteService creates a QuoteService with an empty cache in front of provider.
func NewTestQuoteService(t *testing.T, provider service.QuoteProvider) *service.QuoteService {
	t.Helper()

	return service.NewQuoteService(provider, cache.NewQuoteCache())
}

// NewTestFetcherService creates a FetcherService over db. A nil pacer disables the
// delay between tickers.
func NewTestFetcherService(t *testing.T, db *sql.DB, provider service.QuoteProvider, pacer service.Pacer) *service.FetcherService {
	t.Helper()

	if pacer == nil {
		pacer = service.FixedDelay(0)
	}

	return service.NewFetcherService(
		repository.NewWatchlistRepository(db),
		repository.NewPriceRepository(db),
		NewTestQuoteService(t, provider),
		provider,
		pacer,
	)
}

// NewTestAlertService creates an AlertService over db that reports to sender.
func NewTestAlertService(t *testing.T, db *sql.DB, provider service.QuoteProvider, sender service.NotificationSender) *service.AlertService {
	t.Helper()

	return service.NewAlertService(
		repository.NewAlertRepository(db),
		NewTestQuoteService(t, provider),
		sender,
	)
}

// NewTestReportService creates a ReportService over db.
func NewTestReportService(t *testing.T, db *sql.DB, provider service.QuoteProvider) *service.ReportService {
	t.Helper()

	return service.NewReportService(
		repository.NewWatchlistRepository(db),
		repository.NewPriceRepository(db),
		NewTestQuoteService(t, provider),
		repository.NewReportRepository(db),
	)
}

// NewTestStockService creates a StockService over db.
func NewTestStockService(t *testing.T, db *sql.DB, provider service.QuoteProvider) *service.StockService {
	t.Helper()

	return service.NewStockService(
		NewTestQuoteService(t, provider),
		repository.NewPriceRepository(db),
	)
}

// NewTestSystemService creates a SystemService over db without a scheduler.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, nil)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}
