package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/cache"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// QuoteService is the cache-aware entry point to the quote provider.
// It is shared by the fetch job, the alert job and request handlers.
type QuoteService struct {
	provider QuoteProvider
	cache    *cache.QuoteCache
	group    singleflight.Group
}

// NewQuoteService creates a QuoteService backed by provider and quoteCache.
func NewQuoteService(provider QuoteProvider, quoteCache *cache.QuoteCache) *QuoteService {
	return &QuoteService{
		provider: provider,
		cache:    quoteCache,
	}
}

// GetQuote returns the current quote for ticker.
//
// A fresh cached quote is returned without calling the provider. On a miss the
// provider is called and a successful result is cached. Concurrent misses for the
// same ticker share a single provider call.
//
// Returns ErrInvalidTicker for an empty ticker and ErrQuoteUnavailable when the
// provider had no usable quote.
func (s *QuoteService) GetQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.ErrInvalidTicker
	}

	if q, ok := s.cache.Get(ticker); ok {
		return &q, nil
	}

	v, err, _ := s.group.Do(ticker, func() (any, error) {
		// Another caller may have filled the cache while we waited for the group.
		if q, ok := s.cache.Get(ticker); ok {
			return q, nil
		}

		q, err := s.provider.FetchQuote(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("%s quote for %s: %w", s.provider.Name(), ticker, err)
		}
		if q == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrQuoteUnavailable, ticker)
		}

		s.cache.Put(ticker, *q)
		return *q, nil
	})
	if err != nil {
		return nil, err
	}

	q := v.(model.Quote)
	return &q, nil
}

// ClearCache drops every cached quote.
func (s *QuoteService) ClearCache() {
	s.cache.Clear()
}

// ProviderName returns the name of the underlying provider.
func (s *QuoteService) ProviderName() string {
	return s.provider.Name()
}
