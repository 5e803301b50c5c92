package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/request"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/api/response"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/service"
)

// StockHandler handles per-ticker quote, history and performance requests.
type StockHandler struct {
	stockService *service.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService *service.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// QuoteResponse wraps the current quote of a ticker.
type QuoteResponse struct {
	Quote model.Quote `json:"quote"`
}

// HistoryResponse wraps the stored price bars of a ticker.
type HistoryResponse struct {
	Ticker  string           `json:"ticker"`
	History []model.PriceBar `json:"history"`
}

// Quote handles GET requests for the current quote of a ticker. Quotes are served
// from the quote cache when fresh.
//
// Endpoint: GET /api/stock/quote/{ticker}
// Response: 200 OK with QuoteResponse
// Error: 404 Not Found if the provider has no quote for the ticker
// Error: 500 Internal Server Error if the provider call fails
func (h *StockHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	quote, err := h.stockService.GetQuote(r.Context(), ticker)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveQuote)
		return
	}

	response.RespondJSON(w, http.StatusOK, QuoteResponse{Quote: *quote})
}

// History handles GET requests for stored price bars between two dates, both inclusive.
//
// Endpoint: GET /api/stock/history/{ticker}?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
// Response: 200 OK with HistoryResponse
// Error: 400 Bad Request if a date is missing, malformed, or the range is inverted
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	from, to, err := request.ParseDateRange(r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		respondRequestError(w, err)
		return
	}

	bars, err := h.stockService.GetHistory(r.Context(), ticker, from, to)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHistory)
		return
	}

	response.RespondJSON(w, http.StatusOK, HistoryResponse{Ticker: ticker, History: bars})
}

// Performance handles GET requests for a ticker's change since a start date.
//
// Endpoint: GET /api/stock/performance/{ticker}?startDate=YYYY-MM-DD
// Response: 200 OK with service.Performance
// Error: 400 Bad Request if startDate is missing or malformed
// Error: 404 Not Found if no price is stored since startDate or no quote is available
func (h *StockHandler) Performance(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	start, err := request.ParseDate("startDate", r.URL.Query().Get("startDate"))
	if err != nil {
		respondRequestError(w, err)
		return
	}

	perf, err := h.stockService.GetPerformance(r.Context(), ticker, start)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHistory)
		return
	}

	response.RespondJSON(w, http.StatusOK, perf)
}
