package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/cache"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/testutil"
)

// TestQuoteService_GetQuote tests the cache-aware quote lookup.
//
// WHY: Every job and request goes through GetQuote. The free-tier provider allows a
// handful of calls per minute, so a fresh cached quote must never reach the provider
// and an unusable payload must surface as ErrQuoteUnavailable rather than a zero quote.
func TestQuoteService_GetQuote(t *testing.T) {
	t.Run("second lookup within TTL is served from cache", func(t *testing.T) {
		// Setup
		provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", model.Quote{Price: 190})
		svc := testutil.NewTestQuoteService(t, provider)

		// Execute
		first, err := svc.GetQuote(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("GetQuote() returned unexpected error: %v", err)
		}
		second, err := svc.GetQuote(context.Background(), "aapl")
		if err != nil {
			t.Fatalf("GetQuote() returned unexpected error: %v", err)
		}

		// Assert
		if provider.QuoteCalls("AAPL") != 1 {
			t.Errorf("Expected 1 provider call, got %d", provider.QuoteCalls("AAPL"))
		}
		if *first != *second {
			t.Errorf("Expected cached quote %+v, got %+v", first, second)
		}
	})

	t.Run("expired entry triggers a fresh fetch", func(t *testing.T) {
		now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", model.Quote{Price: 190})
		svc := service.NewQuoteService(provider, cache.NewQuoteCache(cache.WithClock(clock)))

		if _, err := svc.GetQuote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("GetQuote() returned unexpected error: %v", err)
		}
		now = now.Add(cache.QuoteTTL)
		if _, err := svc.GetQuote(context.Background(), "AAPL"); err != nil {
			t.Fatalf("GetQuote() returned unexpected error: %v", err)
		}

		if provider.QuoteCalls("AAPL") != 2 {
			t.Errorf("Expected 2 provider calls after expiry, got %d", provider.QuoteCalls("AAPL"))
		}
	})

	t.Run("nil quote is unavailable and not cached", func(t *testing.T) {
		provider := testutil.NewMockQuoteProvider()
		svc := testutil.NewTestQuoteService(t, provider)

		_, err := svc.GetQuote(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrQuoteUnavailable) {
			t.Errorf("Expected ErrQuoteUnavailable, got %v", err)
		}

		svc.GetQuote(context.Background(), "NOPE") //nolint:errcheck // second lookup only counts calls
		if provider.QuoteCalls("NOPE") != 2 {
			t.Errorf("Expected unavailable quotes not to be cached, got %d calls", provider.QuoteCalls("NOPE"))
		}
	})

	t.Run("provider error is wrapped", func(t *testing.T) {
		timeout := errors.New("timeout")
		provider := testutil.NewMockQuoteProvider().WithError("AAPL", timeout)
		svc := testutil.NewTestQuoteService(t, provider)

		_, err := svc.GetQuote(context.Background(), "AAPL")
		if !errors.Is(err, timeout) {
			t.Errorf("Expected wrapped provider error, got %v", err)
		}
	})

	t.Run("empty ticker is rejected", func(t *testing.T) {
		svc := testutil.NewTestQuoteService(t, testutil.NewMockQuoteProvider())

		if _, err := svc.GetQuote(context.Background(), "  "); !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got %v", err)
		}
	})

	t.Run("concurrent misses share one provider call", func(t *testing.T) {
		provider := testutil.NewMockQuoteProvider().
			WithQuote("MSFT", model.Quote{Price: 410}).
			WithDelay(50 * time.Millisecond)
		svc := testutil.NewTestQuoteService(t, provider)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.GetQuote(context.Background(), "MSFT"); err != nil {
					t.Errorf("GetQuote() returned unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if provider.QuoteCalls("MSFT") != 1 {
			t.Errorf("Expected 1 provider call, got %d", provider.QuoteCalls("MSFT"))
		}
	})

	t.Run("ClearCache forces a refetch", func(t *testing.T) {
		provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", model.Quote{Price: 1})
		svc := testutil.NewTestQuoteService(t, provider)

		svc.GetQuote(context.Background(), "AAPL") //nolint:errcheck // warm cache
		svc.ClearCache()
		svc.GetQuote(context.Background(), "AAPL") //nolint:errcheck // refetch

		if provider.QuoteCalls("AAPL") != 2 {
			t.Errorf("Expected 2 provider calls, got %d", provider.QuoteCalls("AAPL"))
		}
	})
}
