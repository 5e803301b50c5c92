package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const globalQuoteJSON = `{
  "Global Quote": {
    "01. symbol": "IBM",
    "02. open": "187.0000",
    "03. high": "189.5000",
    "04. low": "186.2500",
    "05. price": "188.7500",
    "06. volume": "4123456",
    "07. latest trading day": "2024-03-01",
    "08. previous close": "185.0000",
    "09. change": "3.7500",
    "10. change percent": "2.0270%"
  }
}`

const dailySeriesJSON = `{
  "Meta Data": {"2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2024-03-01": {"1. open": "187.0", "2. high": "189.5", "3. low": "186.25", "4. close": "188.75", "5. volume": "4123456"},
    "2024-02-28": {"1. open": "184.0", "2. high": "186.0", "3. low": "183.0", "4. close": "185.5", "5. volume": "3000000"},
    "2024-02-29": {"1. open": "185.5", "2. high": "186.5", "3. low": "184.0", "4. close": "185.0", "5. volume": "bad"}
  }
}`

func newTestClient(t *testing.T, status int, body string) (*Client, *url.Values) {
	t.Helper()

	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck // test server
	}))
	t.Cleanup(srv.Close)

	return NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), &query
}

func TestClient_FetchQuote(t *testing.T) {
	t.Run("parses global quote", func(t *testing.T) {
		client, query := newTestClient(t, http.StatusOK, globalQuoteJSON)

		quote, err := client.FetchQuote(context.Background(), "ibm")
		if err != nil {
			t.Fatalf("FetchQuote() returned unexpected error: %v", err)
		}
		if quote == nil {
			t.Fatal("Expected a quote")
		}

		if query.Get("function") != "GLOBAL_QUOTE" || query.Get("symbol") != "IBM" || query.Get("apikey") != "test-key" {
			t.Errorf("Unexpected query: %v", *query)
		}
		if quote.Symbol != "IBM" || quote.Price != 188.75 || quote.Volume != 4123456 {
			t.Errorf("Unexpected quote: %+v", quote)
		}
		if quote.ChangePercent != 2.027 {
			t.Errorf("Expected change percent 2.027, got %v", quote.ChangePercent)
		}
		if quote.LatestTradingDay != "2024-03-01" {
			t.Errorf("Expected latest trading day 2024-03-01, got %s", quote.LatestTradingDay)
		}
	})

	noData := []struct {
		name string
		body string
	}{
		{"empty global quote", `{"Global Quote": {}}`},
		{"rate limit note", `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`},
		{"information message", `{"Information": "The demo API key is for demo purposes only."}`},
		{"error message", `{"Error Message": "Invalid API call."}`},
		{"unparsable price", `{"Global Quote": {"01. symbol": "IBM", "05. price": "n/a"}}`},
		{"not json", `upstream timeout`},
	}
	for _, tc := range noData {
		t.Run("returns nil for "+tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.StatusOK, tc.body)

			quote, err := client.FetchQuote(context.Background(), "IBM")
			if err != nil {
				t.Fatalf("FetchQuote() returned unexpected error: %v", err)
			}
			if quote != nil {
				t.Errorf("Expected nil quote, got %+v", quote)
			}
		})
	}

	t.Run("returns error for non-200 status", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusBadGateway, ``)

		if _, err := client.FetchQuote(context.Background(), "IBM"); err == nil {
			t.Error("Expected error for 502 response")
		}
	})

	t.Run("returns error when context is cancelled", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, globalQuoteJSON)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := client.FetchQuote(ctx, "IBM"); err == nil {
			t.Error("Expected error for cancelled context")
		}
	})
}

func TestClient_FetchDailySeries(t *testing.T) {
	t.Run("returns parsable bars oldest first", func(t *testing.T) {
		client, query := newTestClient(t, http.StatusOK, dailySeriesJSON)

		bars, err := client.FetchDailySeries(context.Background(), "IBM")
		if err != nil {
			t.Fatalf("FetchDailySeries() returned unexpected error: %v", err)
		}

		if query.Get("function") != "TIME_SERIES_DAILY" {
			t.Errorf("Expected TIME_SERIES_DAILY, got %s", query.Get("function"))
		}
		if len(bars) != 2 {
			t.Fatalf("Expected 2 bars (malformed one skipped), got %d", len(bars))
		}

		first := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
		if !bars[0].Timestamp.Equal(first) {
			t.Errorf("Expected first bar on %v, got %v", first, bars[0].Timestamp)
		}
		if bars[1].Close != 188.75 || bars[1].Ticker != "IBM" {
			t.Errorf("Unexpected last bar: %+v", bars[1])
		}
	})

	t.Run("returns empty series for rate limit note", func(t *testing.T) {
		client, _ := newTestClient(t, http.StatusOK, `{"Note": "slow down"}`)

		bars, err := client.FetchDailySeries(context.Background(), "IBM")
		if err != nil {
			t.Fatalf("FetchDailySeries() returned unexpected error: %v", err)
		}
		if bars == nil || len(bars) != 0 {
			t.Errorf("Expected empty non-nil series, got %v", bars)
		}
	})
}
