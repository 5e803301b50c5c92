package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/config"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, model.Watchlist) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	wl := testutil.CreateWatchlistWithStocks(t, db, "AAPL")
	provider := testutil.NewMockQuoteProvider().WithQuote("AAPL", model.Quote{Price: 100})

	cfg := config.Default()
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}

	return api.NewRouter(api.Services{
		System: testutil.NewTestSystemService(t, db),
		Report: testutil.NewTestReportService(t, db, provider),
		Stock:  testutil.NewTestStockService(t, db, provider),
	}, cfg), wl
}

// TestRouter_Routes checks that every route is mounted with its path validation.
func TestRouter_Routes(t *testing.T) {
	router, wl := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/api/system/health", http.StatusOK},
		{"version", http.MethodGet, "/api/system/version", http.StatusOK},
		{"jobs", http.MethodGet, "/api/system/jobs", http.StatusOK},
		{"generate report", http.MethodPost, "/api/report/generate/" + wl.ID, http.StatusCreated},
		{"generate with bad id", http.MethodPost, "/api/report/generate/not-a-uuid", http.StatusBadRequest},
		{"generate via GET", http.MethodGet, "/api/report/generate/" + wl.ID, http.StatusMethodNotAllowed},
		{"list reports", http.MethodGet, "/api/report/watchlist/" + wl.ID, http.StatusOK},
		{"unknown report", http.MethodGet, "/api/report/" + testutil.MakeID(), http.StatusNotFound},
		{"quote", http.MethodGet, "/api/stock/quote/aapl", http.StatusOK},
		{"quote with bad ticker", http.MethodGet, "/api/stock/quote/$$$", http.StatusBadRequest},
		{"history", http.MethodGet, "/api/stock/history/AAPL?startDate=2024-01-01&endDate=2024-01-31", http.StatusOK},
		{"performance without data", http.MethodGet, "/api/stock/performance/AAPL?startDate=2024-01-01", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}
