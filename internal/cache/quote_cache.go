// Package cache holds the in-process quote cache that shields the external
// quote provider from redundant calls.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// QuoteTTL is how long a cached quote stays fresh, measured from insertion.
const QuoteTTL = 15 * time.Minute

type entry struct {
	quote     model.Quote
	fetchedAt time.Time
}

// QuoteCache maps a ticker to its most recently fetched quote.
//
// Entries expire QuoteTTL after they were stored; reads do not extend an entry's
// lifetime. There is no size bound: the number of tracked tickers is small.
// A QuoteCache is safe for concurrent use and the last Put for a ticker wins.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a QuoteCache.
type Option func(*QuoteCache)

// WithTTL overrides the default QuoteTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *QuoteCache) {
		c.ttl = ttl
	}
}

// WithClock sets the time source used for insertion and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *QuoteCache) {
		c.now = now
	}
}

// NewQuoteCache creates an empty cache.
func NewQuoteCache(opts ...Option) *QuoteCache {
	c := &QuoteCache{
		entries: make(map[string]entry),
		ttl:     QuoteTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached quote for ticker if it is younger than the TTL.
// An expired entry is removed and reported as a miss.
func (c *QuoteCache) Get(ticker string) (model.Quote, bool) {
	key := normalize(ticker)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return model.Quote{}, false
	}

	if c.now().Sub(e.fetchedAt) >= c.ttl {
		c.mu.Lock()
		// Only drop the entry we looked at; a concurrent Put may have replaced it.
		if cur, still := c.entries[key]; still && cur.fetchedAt.Equal(e.fetchedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return model.Quote{}, false
	}

	return e.quote, true
}

// Put stores quote for ticker, stamped with the current time.
func (c *QuoteCache) Put(ticker string, quote model.Quote) {
	c.mu.Lock()
	c.entries[normalize(ticker)] = entry{quote: quote, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *QuoteCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including ones that have expired
// but have not been read since.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
