package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// WatchlistStatusActive marks a watchlist whose tickers are polled and whose alerts are evaluated.
const WatchlistStatusActive = "active"

// Watchlist is a named, time-bounded group of tracked tickers owned by a user.
type Watchlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
}

// WatchlistStock is a ticker tracked in a watchlist together with the user's position.
// EntryPrice is optional; when absent, report generation derives it from stored price bars.
type WatchlistStock struct {
	ID          string     `json:"id"`
	WatchlistID string     `json:"watchlistId"`
	Ticker      string     `json:"ticker"`
	SharesOwned float64    `json:"sharesOwned"`
	EntryPrice  null.Float `json:"entryPrice"`
}
