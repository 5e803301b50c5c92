package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// Performance labels for a stock's change over the report window.
const (
	PerformanceGain = "gain"
	PerformanceLoss = "loss"
)

// StockPerformance holds the computed metrics for one watchlist stock.
// Metrics that cannot be derived from the available data (no entry price, no current
// quote, no bars in the window) are left invalid and serialize as null.
type StockPerformance struct {
	Ticker        string     `json:"ticker"`
	EntryPrice    null.Float `json:"entryPrice"`
	CurrentPrice  null.Float `json:"currentPrice"`
	Change        null.Float `json:"change"`
	ChangePercent null.Float `json:"changePercent"`
	HighestPrice  null.Float `json:"highestPrice"`
	LowestPrice   null.Float `json:"lowestPrice"`
	SharesOwned   float64    `json:"sharesOwned"`
	CurrentValue  null.Float `json:"currentValue"`
	TotalChange   null.Float `json:"totalChange"`
	Performance   string     `json:"performance,omitempty"`
}

// Performer identifies the best or worst stock of a report.
type Performer struct {
	Ticker        string  `json:"ticker"`
	ChangePercent float64 `json:"changePercent"`
}

// ReportSummary aggregates portfolio metrics over the stocks with shares owned.
type ReportSummary struct {
	TotalStocks                 int        `json:"totalStocks"`
	TotalPortfolioValue         float64    `json:"totalPortfolioValue"`
	TotalPortfolioChange        float64    `json:"totalPortfolioChange"`
	TotalPortfolioChangePercent float64    `json:"totalPortfolioChangePercent"`
	BestPerformer               *Performer `json:"bestPerformer"`
	WorstPerformer              *Performer `json:"worstPerformer"`
}

// Report is an immutable performance snapshot of a watchlist, persisted once per generation.
type Report struct {
	ID                string             `json:"id"`
	WatchlistID       string             `json:"watchlistId"`
	WatchlistName     string             `json:"watchlistName"`
	StartDate         time.Time          `json:"startDate"`
	EndDate           time.Time          `json:"endDate"`
	GeneratedAt       time.Time          `json:"generatedAt"`
	Summary           ReportSummary      `json:"summary"`
	StockPerformances []StockPerformance `json:"stockPerformances"`
}
