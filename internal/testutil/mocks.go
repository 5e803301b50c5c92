package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// ProviderCall records one call to MockQuoteProvider.
type ProviderCall struct {
	Method string
	Ticker string
	At     time.Time
}

// MockQuoteProvider is an in-memory quote provider for tests.
// Tickers without a configured quote return nil, nil, as a real provider does for
// an empty payload. It is safe for concurrent use.
//
// Example usage:
//
//	provider := testutil.NewMockQuoteProvider().
//	    WithQuote("AAPL", model.Quote{Price: 110}).
//	    WithError("MSFT", errors.New("timeout"))
type MockQuoteProvider struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
	errs   map[string]error
	series map[string][]model.PriceBar
	delay  time.Duration
	calls  []ProviderCall
}

// NewMockQuoteProvider creates a provider with no data.
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		quotes: make(map[string]model.Quote),
		errs:   make(map[string]error),
		series: make(map[string][]model.PriceBar),
	}
}

// WithQuote sets the quote returned for ticker. The symbol defaults to the ticker.
func (m *MockQuoteProvider) WithQuote(ticker string, quote model.Quote) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticker = strings.ToUpper(ticker)
	if quote.Symbol == "" {
		quote.Symbol = ticker
	}
	m.quotes[ticker] = quote
	return m
}

// WithError makes every call for ticker fail with err.
func (m *MockQuoteProvider) WithError(ticker string, err error) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs[strings.ToUpper(ticker)] = err
	return m
}

// WithSeries sets the daily series returned for ticker.
func (m *MockQuoteProvider) WithSeries(ticker string, bars []model.PriceBar) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.series[strings.ToUpper(ticker)] = bars
	return m
}

// WithDelay makes every FetchQuote call block for d.
func (m *MockQuoteProvider) WithDelay(d time.Duration) *MockQuoteProvider {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delay = d
	return m
}

// Name identifies the provider.
func (m *MockQuoteProvider) Name() string {
	return "mock"
}

// FetchQuote returns the configured quote for ticker.
func (m *MockQuoteProvider) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	ticker = strings.ToUpper(ticker)

	m.mu.Lock()
	m.calls = append(m.calls, ProviderCall{Method: "FetchQuote", Ticker: ticker, At: time.Now()})
	delay := m.delay
	quote, ok := m.quotes[ticker]
	err := m.errs[ticker]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &quote, nil
}

// FetchDailySeries returns the configured series for ticker, or an empty series.
func (m *MockQuoteProvider) FetchDailySeries(_ context.Context, ticker string) ([]model.PriceBar, error) {
	ticker = strings.ToUpper(ticker)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ProviderCall{Method: "FetchDailySeries", Ticker: ticker, At: time.Now()})
	if err := m.errs[ticker]; err != nil {
		return nil, err
	}
	bars := append([]model.PriceBar{}, m.series[ticker]...)
	return bars, nil
}

// Calls returns every recorded call in order.
func (m *MockQuoteProvider) Calls() []ProviderCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ProviderCall(nil), m.calls...)
}

// QuoteCalls returns how many times FetchQuote was called for ticker.
func (m *MockQuoteProvider) QuoteCalls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c.Method == "FetchQuote" && c.Ticker == strings.ToUpper(ticker) {
			n++
		}
	}
	return n
}

// Notification is one message captured by RecordingSender.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// RecordingSender captures notifications instead of sending them.
// Set Err to make every Send fail.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

// Send records the notification, or returns Err when set.
func (s *RecordingSender) Send(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, Notification{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// Sent returns the captured notifications in order.
func (s *RecordingSender) Sent() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Notification(nil), s.sent...)
}

// CountingPacer counts waits without sleeping. Set Err to interrupt the pass.
type CountingPacer struct {
	mu    sync.Mutex
	waits int
	Err   error
}

// Wait records the call.
func (p *CountingPacer) Wait(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waits++
	return p.Err
}

// Waits returns the number of Wait calls.
func (p *CountingPacer) Waits() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.waits
}
