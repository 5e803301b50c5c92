// Package yahoo implements a quote provider on top of the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// FinanceClient fetches quotes and daily series from Yahoo Finance.
// It wraps an HTTP client; no API key is needed.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithBaseURL points the client at a different chart endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *FinanceClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *FinanceClient) {
		c.httpClient = httpClient
	}
}

// NewFinanceClient creates a new Yahoo Finance client.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(opts ...Option) *FinanceClient {
	c := &FinanceClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs.
func (c *FinanceClient) Name() string {
	return "yahoo"
}

// FetchQuote returns the current quote for ticker, derived from its 5-day daily chart.
//
// The price is the live market price when Yahoo reports one, otherwise the last close.
// The previous close is the close of the trading day before the last one.
//
// Returns nil, nil when Yahoo knows no such symbol or the chart carries no prices.
func (c *FinanceClient) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	resp, err := c.query(ctx, ticker, "5d")
	if err != nil {
		return nil, err
	}

	chart, ok := ParseChart(resp)
	if !ok {
		log.Printf("[WARN] yahoo returned no usable chart for %s", ticker)
		return nil, nil
	}

	return chart.Quote(), nil
}

// FetchDailySeries returns roughly three months of daily bars for ticker, oldest first.
// Returns an empty series when Yahoo has no data for the symbol.
func (c *FinanceClient) FetchDailySeries(ctx context.Context, ticker string) ([]model.PriceBar, error) {
	resp, err := c.query(ctx, ticker, "3mo")
	if err != nil {
		return nil, err
	}

	chart, ok := ParseChart(resp)
	if !ok {
		return []model.PriceBar{}, nil
	}

	bars := make([]model.PriceBar, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		bars = append(bars, model.PriceBar{
			Ticker:    strings.ToUpper(ticker),
			Timestamp: ind.Date,
			Open:      ind.PriceOpen,
			High:      ind.PriceHigh,
			Low:       ind.PriceLow,
			Close:     ind.PriceClose,
			Volume:    ind.Volume,
		})
	}
	return bars, nil
}

// ParseChart converts a raw chart response into a PriceChart.
//
// Trading days without a close price are dropped; missing open, high, low and volume
// values default to the close (or zero for volume). The second return value is false
// when the response carries an error object, no result, or no day with a close.
func ParseChart(resp Response) (PriceChart, bool) {
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		return PriceChart{}, false
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return PriceChart{}, false
	}
	q := result.Indicators.Quote[0]

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice, ok := at(q.Close, i)
		if !ok {
			continue
		}
		ind := Indicators{
			Date:       time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			PriceClose: closePrice,
			PriceOpen:  closePrice,
			PriceHigh:  closePrice,
			PriceLow:   closePrice,
		}
		if v, ok := at(q.Open, i); ok {
			ind.PriceOpen = v
		}
		if v, ok := at(q.High, i); ok {
			ind.PriceHigh = v
		}
		if v, ok := at(q.Low, i); ok {
			ind.PriceLow = v
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			ind.Volume = *q.Volume[i]
		}
		indicators = append(indicators, ind)
	}

	if len(indicators) == 0 {
		return PriceChart{}, false
	}

	return PriceChart{
		Symbol:     result.Meta.Symbol,
		Currency:   result.Meta.Currency,
		Meta:       result.Meta,
		Indicators: indicators,
	}, true
}

// Quote builds a quote from the last trading day of the chart.
func (c PriceChart) Quote() *model.Quote {
	last := c.Indicators[len(c.Indicators)-1]

	price := last.PriceClose
	if c.Meta.RegularMarketPrice > 0 {
		price = c.Meta.RegularMarketPrice
	}

	previous := c.Meta.ChartPreviousClose
	if n := len(c.Indicators); n > 1 {
		previous = c.Indicators[n-2].PriceClose
	}

	quote := &model.Quote{
		Symbol:           c.Symbol,
		Price:            price,
		Open:             last.PriceOpen,
		High:             last.PriceHigh,
		Low:              last.PriceLow,
		Volume:           last.Volume,
		PreviousClose:    previous,
		LatestTradingDay: last.Date.Format("2006-01-02"),
	}
	if previous > 0 {
		quote.Change = price - previous
		quote.ChangePercent = quote.Change / previous * 100
	}
	return quote
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

// query executes a chart request. Non-2xx statuses other than 404 are errors; a 404
// decodes into a Response carrying Yahoo's error object.
func (c *FinanceClient) query(ctx context.Context, ticker, chartRange string) (Response, error) {
	endpoint := fmt.Sprintf("%s/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(strings.ToUpper(ticker)), chartRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("yahoo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to read yahoo response: %w", err)
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		log.Printf("[WARN] malformed yahoo response for %s: %v", ticker, err)
		return Response{}, nil
	}

	return response, nil
}
