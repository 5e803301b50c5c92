// Package alphavantage implements a quote provider on top of the Alpha Vantage
// GLOBAL_QUOTE and TIME_SERIES_DAILY endpoints.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// Client is an Alpha Vantage API client.
//
// Payloads that carry no data (unknown symbol, the free tier's rate-limit note, or
// anything that does not decode) are reported as a nil quote or an empty series rather
// than an error; only transport failures and non-200 statuses are errors.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client that authenticates with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs.
func (c *Client) Name() string {
	return "alphavantage"
}

// FetchQuote returns the GLOBAL_QUOTE for ticker, or nil when Alpha Vantage returned
// no usable quote.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	var resp globalQuoteResponse
	ok, err := c.get(ctx, "GLOBAL_QUOTE", ticker, &resp)
	if err != nil || !ok {
		return nil, err
	}

	if msg := providerMessage(resp.Note, resp.Information, resp.ErrorMessage); msg != "" {
		log.Printf("[WARN] alphavantage returned no quote for %s: %s", ticker, msg)
		return nil, nil
	}

	quote, err := parseGlobalQuote(resp.GlobalQuote)
	if err != nil {
		log.Printf("[WARN] malformed alphavantage quote for %s: %v", ticker, err)
		return nil, nil
	}
	return quote, nil
}

// FetchDailySeries returns the TIME_SERIES_DAILY bars for ticker, oldest first.
// Each bar is stamped at midnight UTC of its trading day. Entries that do not parse
// are skipped.
func (c *Client) FetchDailySeries(ctx context.Context, ticker string) ([]model.PriceBar, error) {
	var resp dailySeriesResponse
	ok, err := c.get(ctx, "TIME_SERIES_DAILY", ticker, &resp)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.PriceBar{}, nil
	}

	if msg := providerMessage(resp.Note, resp.Information, resp.ErrorMessage); msg != "" {
		log.Printf("[WARN] alphavantage returned no daily series for %s: %s", ticker, msg)
		return []model.PriceBar{}, nil
	}

	bars := make([]model.PriceBar, 0, len(resp.TimeSeries))
	for date, p := range resp.TimeSeries {
		bar, err := parseDailyPrice(strings.ToUpper(ticker), date, p)
		if err != nil {
			log.Printf("[WARN] skipping malformed %s bar for %s: %v", date, ticker, err)
			continue
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

// get performs a query and decodes the body into out. It returns false without an
// error when the body is not valid JSON.
func (c *Client) get(ctx context.Context, function, ticker string, out any) (bool, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", strings.ToUpper(ticker))
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("alphavantage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("[WARN] malformed alphavantage %s response for %s: %v", function, ticker, err)
		return false, nil
	}
	return true, nil
}

func parseGlobalQuote(g globalQuote) (*model.Quote, error) {
	if g.Symbol == "" || g.Price == "" {
		return nil, fmt.Errorf("empty quote")
	}

	var q model.Quote
	var err error
	q.Symbol = g.Symbol
	q.LatestTradingDay = g.LatestTradingDay

	fields := []struct {
		raw string
		dst *float64
	}{
		{g.Price, &q.Price},
		{g.Open, &q.Open},
		{g.High, &q.High},
		{g.Low, &q.Low},
		{g.PreviousClose, &q.PreviousClose},
		{g.Change, &q.Change},
		{strings.TrimSuffix(g.ChangePercent, "%"), &q.ChangePercent},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(strings.TrimSpace(f.raw), 64); err != nil {
			return nil, err
		}
	}

	if q.Volume, err = strconv.ParseInt(strings.TrimSpace(g.Volume), 10, 64); err != nil {
		return nil, err
	}
	return &q, nil
}

func parseDailyPrice(ticker, date string, p dailyPrice) (model.PriceBar, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return model.PriceBar{}, err
	}

	bar := model.PriceBar{Ticker: ticker, Timestamp: day.UTC()}
	fields := []struct {
		raw string
		dst *float64
	}{
		{p.Open, &bar.Open},
		{p.High, &bar.High},
		{p.Low, &bar.Low},
		{p.Close, &bar.Close},
	}
	for _, f := range fields {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil {
			return model.PriceBar{}, err
		}
	}

	if bar.Volume, err = strconv.ParseInt(p.Volume, 10, 64); err != nil {
		return model.PriceBar{}, err
	}
	return bar, nil
}
