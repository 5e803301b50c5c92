package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// Performance is the change of a single ticker since a start date.
type Performance struct {
	Ticker        string  `json:"ticker"`
	EntryPrice    float64 `json:"entryPrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Performance   string  `json:"performance"`
}

// StockService answers per-ticker quote, history and performance queries.
type StockService struct {
	quotes QuoteSource
	prices PriceStore
}

// NewStockService creates a new StockService.
func NewStockService(quotes QuoteSource, prices PriceStore) *StockService {
	return &StockService{
		quotes: quotes,
		prices: prices,
	}
}

// GetQuote returns the current quote for ticker.
func (s *StockService) GetQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	return s.quotes.GetQuote(ctx, ticker)
}

// GetHistory returns the stored bars for ticker between from and to, both inclusive.
func (s *StockService) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.ErrInvalidTicker
	}
	if from.After(to) {
		return nil, apperrors.ErrInvalidDateRange
	}

	bars, err := s.prices.QueryBars(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHistory, err)
	}
	return bars, nil
}

// GetPerformance compares the current price of ticker with the close of its first
// bar on or after start.
//
// Returns ErrInsufficientData when there is no such bar, its close is zero, or no
// current quote is available.
func (s *StockService) GetPerformance(ctx context.Context, ticker string, start time.Time) (Performance, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Performance{}, apperrors.ErrInvalidTicker
	}

	entry, err := s.prices.EarliestBarSince(ctx, ticker, start)
	if err != nil {
		return Performance{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveHistory, err)
	}
	if entry == nil || entry.Close == 0 {
		return Performance{}, fmt.Errorf("%w: no price recorded for %s since %s",
			apperrors.ErrInsufficientData, ticker, start.Format("2006-01-02"))
	}

	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		return Performance{}, fmt.Errorf("%w: %w", apperrors.ErrInsufficientData, err)
	}

	change := quote.Price - entry.Close
	perf := Performance{
		Ticker:        ticker,
		EntryPrice:    round(entry.Close),
		CurrentPrice:  round(quote.Price),
		Change:        round(change),
		ChangePercent: round(change / entry.Close * 100),
		Performance:   model.PerformanceGain,
	}
	if change < 0 {
		perf.Performance = model.PerformanceLoss
	}
	return perf, nil
}
