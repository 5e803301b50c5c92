package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// DefaultFetchDelay is the pause between consecutive provider calls in a fetch pass.
// Free-tier quote APIs allow 5 calls per minute; a 12 second gap keeps a pass under
// that ceiling.
const DefaultFetchDelay = 12 * time.Second

// Pacer enforces the gap between consecutive provider calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay is a Pacer that sleeps for a constant duration.
type FixedDelay time.Duration

// Wait sleeps for the delay or until ctx is done.
func (d FixedDelay) Wait(ctx context.Context) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchResult summarises one fetch pass.
type FetchResult struct {
	Tickers  int           `json:"tickers"`
	Updated  int           `json:"updated"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// FetcherService polls quotes for every ticker under an active watchlist and
// records one price bar per ticker per pass.
type FetcherService struct {
	watchlists WatchlistStore
	prices     PriceStore
	quotes     QuoteSource
	provider   QuoteProvider
	pacer      Pacer
	now        func() time.Time
}

// NewFetcherService creates a FetcherService. provider is used for historical
// backfills only; regular passes go through the cache-aware quotes source.
func NewFetcherService(
	watchlists WatchlistStore,
	prices PriceStore,
	quotes QuoteSource,
	provider QuoteProvider,
	pacer Pacer,
) *FetcherService {
	if pacer == nil {
		pacer = FixedDelay(DefaultFetchDelay)
	}
	return &FetcherService{
		watchlists: watchlists,
		prices:     prices,
		quotes:     quotes,
		provider:   provider,
		pacer:      pacer,
		now:        time.Now,
	}
}

// FetchAll runs one fetch pass.
//
// Tickers are processed strictly sequentially with the pacer's delay between
// consecutive tickers. A failed quote or bar write for one ticker is logged and
// the pass moves on; only failing to list the tickers aborts the pass.
func (s *FetcherService) FetchAll(ctx context.Context) (FetchResult, error) {
	start := s.now()

	tickers, err := s.watchlists.ListActiveTickers(ctx)
	if err != nil {
		return FetchResult{}, fmt.Errorf("failed to list active tickers: %w", err)
	}

	result := FetchResult{Tickers: len(tickers)}
	if len(tickers) == 0 {
		log.Println("[INFO] no active stocks to fetch")
		return result, nil
	}

	log.Printf("[INFO] fetching data for %d stocks", len(tickers))

	for i, ticker := range tickers {
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				result.Duration = s.now().Sub(start)
				return result, fmt.Errorf("fetch pass interrupted after %d of %d tickers: %w", i, len(tickers), err)
			}
		}

		if err := s.fetchOne(ctx, ticker); err != nil {
			result.Failed++
			log.Printf("[WARN] error fetching data for %s: %v", ticker, err)
			continue
		}
		result.Updated++
	}

	result.Duration = s.now().Sub(start)
	log.Printf("[INFO] stock data fetch completed: %d updated, %d failed", result.Updated, result.Failed)
	return result, nil
}

func (s *FetcherService) fetchOne(ctx context.Context, ticker string) error {
	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		return err
	}

	bar := model.BarFromQuote(ticker, *quote, s.now().UTC().Truncate(time.Second))
	if err := s.prices.UpsertBar(ctx, bar); err != nil {
		return err
	}

	log.Printf("[INFO] updated data for %s: $%.2f", ticker, quote.Price)
	return nil
}

// Backfill loads the provider's daily series for ticker into the price store
// and returns the number of bars written. An empty series writes nothing.
func (s *FetcherService) Backfill(ctx context.Context, ticker string) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	bars, err := s.provider.FetchDailySeries(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch daily series for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		log.Printf("[WARN] no daily series returned for %s", ticker)
		return 0, nil
	}

	for i := range bars {
		bars[i].Ticker = ticker
	}

	written, err := s.prices.UpsertBars(ctx, bars)
	if err != nil {
		return 0, err
	}

	log.Printf("[INFO] backfilled %d daily bars for %s", written, ticker)
	return written, nil
}
