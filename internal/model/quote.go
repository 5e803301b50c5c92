package model

import "time"

// Quote is a snapshot of a ticker's current trading statistics as returned by a
// quote provider. Quotes are transient: they live in the quote cache or in memory
// for the duration of a request and are never persisted directly.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"changePercent"`
	Volume           int64   `json:"volume"`
	Open             float64 `json:"open"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	PreviousClose    float64 `json:"previousClose"`
	LatestTradingDay string  `json:"latestTradingDay"`
}

// PriceBar is one OHLCV record for a ticker at a specific timestamp.
// Bars are keyed by (Ticker, Timestamp); writing a bar for an existing key
// overwrites its OHLCV values.
type PriceBar struct {
	Ticker    string    `json:"ticker"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// BarFromQuote builds the price bar recorded for a quote at the given time.
// The close is the quote's current price.
func BarFromQuote(ticker string, q Quote, at time.Time) PriceBar {
	return PriceBar{
		Ticker:    ticker,
		Timestamp: at,
		Open:      q.Open,
		High:      q.High,
		Low:       q.Low,
		Close:     q.Price,
		Volume:    q.Volume,
	}
}
