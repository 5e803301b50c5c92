package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/guregu/null/v6"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// ReportService generates and retrieves watchlist performance reports.
// Generation only reads stocks and price bars; the report itself is the only thing written.
type ReportService struct {
	watchlists WatchlistStore
	prices     PriceStore
	quotes     QuoteSource
	reports    ReportStore
	now        func() time.Time
}

// NewReportService creates a new ReportService with the provided stores and quote source.
func NewReportService(watchlists WatchlistStore, prices PriceStore, quotes QuoteSource, reports ReportStore) *ReportService {
	return &ReportService{
		watchlists: watchlists,
		prices:     prices,
		quotes:     quotes,
		reports:    reports,
		now:        time.Now,
	}
}

// GenerateReport computes a performance snapshot of a watchlist over its date window
// and persists it.
//
// For every stock in the watchlist:
//   - Entry price: the stored entry price, or the close of the earliest bar on or after
//     the watchlist start date
//   - Current price: the cache-aware current quote
//   - Highest/lowest price: over the bars inside [startDate, endDate]
//
// Missing data does not fail the report. A stock without an entry price, a current
// quote or bars in the window gets null values for the metrics that depend on them.
//
// Stocks are ranked by change percent, highest first, and the summary aggregates the
// stocks with shares owned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - watchlistID: The watchlist to report on
//
// Returns:
// The persisted report, ErrWatchlistNotFound when the watchlist does not exist,
// ErrInvalidDateRange when its window ends before it starts, or a wrapped store error.
func (s *ReportService) GenerateReport(ctx context.Context, watchlistID string) (model.Report, error) {
	watchlist, err := s.watchlists.GetWatchlist(ctx, watchlistID)
	if err != nil {
		return model.Report{}, err
	}

	if watchlist.EndDate.Before(watchlist.StartDate) {
		return model.Report{}, fmt.Errorf("%w: watchlist %s ends before it starts",
			apperrors.ErrInvalidDateRange, watchlistID)
	}

	stocks, err := s.watchlists.GetWatchlistStocks(ctx, watchlistID)
	if err != nil {
		return model.Report{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGenerateReport, err)
	}

	perfs := make([]model.StockPerformance, 0, len(stocks))
	holdings := make([]holding, 0, len(stocks))
	for _, stock := range stocks {
		perf, h, err := s.stockPerformance(ctx, watchlist, stock)
		if err != nil {
			return model.Report{}, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToGenerateReport, stock.Ticker, err)
		}
		perfs = append(perfs, perf)
		holdings = append(holdings, h)
	}

	rankPerformances(perfs)

	report := model.Report{
		WatchlistID:       watchlist.ID,
		WatchlistName:     watchlist.Name,
		StartDate:         watchlist.StartDate,
		EndDate:           watchlist.EndDate,
		GeneratedAt:       s.now().UTC().Truncate(time.Second),
		Summary:           summarize(perfs, holdings),
		StockPerformances: perfs,
	}

	saved, err := s.reports.SaveReport(ctx, report)
	if err != nil {
		return model.Report{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGenerateReport, err)
	}

	log.Printf("[INFO] generated report %s for watchlist %s (%d stocks)", saved.ID, watchlist.ID, len(perfs))
	return saved, nil
}

func (s *ReportService) stockPerformance(ctx context.Context, watchlist model.Watchlist, stock model.WatchlistStock) (model.StockPerformance, holding, error) {
	entry, err := s.resolveEntryPrice(ctx, stock, watchlist.StartDate)
	if err != nil {
		return model.StockPerformance{}, holding{}, err
	}

	quote, err := s.quotes.GetQuote(ctx, stock.Ticker)
	if err != nil {
		log.Printf("[WARN] no current quote for %s: %v", stock.Ticker, err)
		quote = nil
	}

	bars, err := s.prices.QueryBars(ctx, stock.Ticker, watchlist.StartDate, watchlist.EndDate)
	if err != nil {
		return model.StockPerformance{}, holding{}, err
	}

	return calculatePerformance(stock, entry, quote, bars), newHolding(stock, entry, quote), nil
}

// resolveEntryPrice returns the stored entry price when one was recorded, otherwise
// the close of the first bar on or after start. The result is invalid when neither exists.
func (s *ReportService) resolveEntryPrice(ctx context.Context, stock model.WatchlistStock, start time.Time) (null.Float, error) {
	if stock.EntryPrice.Valid && stock.EntryPrice.Float64 > 0 {
		return stock.EntryPrice, nil
	}

	bar, err := s.prices.EarliestBarSince(ctx, stock.Ticker, start)
	if err != nil {
		return null.Float{}, err
	}
	if bar == nil {
		return null.Float{}, nil
	}
	return null.FloatFrom(bar.Close), nil
}

// ListReports returns the stored reports of a watchlist, newest first.
func (s *ReportService) ListReports(ctx context.Context, watchlistID string) ([]model.Report, error) {
	if _, err := s.watchlists.GetWatchlist(ctx, watchlistID); err != nil {
		return nil, err
	}

	reports, err := s.reports.ListReports(ctx, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveReports, err)
	}
	return reports, nil
}

// GetReport returns a stored report by ID.
func (s *ReportService) GetReport(ctx context.Context, reportID string) (model.Report, error) {
	return s.reports.GetReport(ctx, reportID)
}
