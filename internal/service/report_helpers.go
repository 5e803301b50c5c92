package service

import (
	"sort"

	"github.com/guregu/null/v6"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// calculatePerformance derives the metrics of one watchlist stock.
//
// Any input may be missing: entry is invalid when neither a stored entry price nor a
// bar at or after the window start exists, quote is nil when no current price could be
// fetched, and bars is empty when nothing was recorded in the window. Each metric that
// depends on a missing input is left invalid; the others are still filled in.
//
// Parameters:
//   - stock: The watchlist stock with its share count
//   - entry: Resolved entry price (stored or derived from the earliest bar)
//   - quote: Current quote, or nil when unavailable
//   - bars: Price bars inside the watchlist window, in any order
//
// Returns:
// StockPerformance with every derived value rounded to two decimal places.
func calculatePerformance(stock model.WatchlistStock, entry null.Float, quote *model.Quote, bars []model.PriceBar) model.StockPerformance {
	perf := model.StockPerformance{
		Ticker:      stock.Ticker,
		SharesOwned: stock.SharesOwned,
	}

	if entry.Valid {
		perf.EntryPrice = null.FloatFrom(round(entry.Float64))
	}

	if quote != nil {
		perf.CurrentPrice = null.FloatFrom(round(quote.Price))
		perf.CurrentValue = null.FloatFrom(round(stock.SharesOwned * quote.Price))
	}

	if entry.Valid && quote != nil {
		change := quote.Price - entry.Float64
		perf.Change = null.FloatFrom(round(change))
		perf.TotalChange = null.FloatFrom(round(stock.SharesOwned * change))
		if entry.Float64 != 0 {
			perf.ChangePercent = null.FloatFrom(round(change / entry.Float64 * 100))
		}
		if change >= 0 {
			perf.Performance = model.PerformanceGain
		} else {
			perf.Performance = model.PerformanceLoss
		}
	}

	perf.HighestPrice, perf.LowestPrice = priceRange(bars)

	return perf
}

// holding is the unrounded position of one stock, kept apart from its rounded
// StockPerformance so portfolio totals are rounded once.
type holding struct {
	value  float64
	change float64
	known  bool
}

// newHolding values a position at the current quote. It is unknown when no shares are
// owned or the entry price or quote is missing.
func newHolding(stock model.WatchlistStock, entry null.Float, quote *model.Quote) holding {
	if stock.SharesOwned <= 0 || !entry.Valid || quote == nil {
		return holding{}
	}
	return holding{
		value:  stock.SharesOwned * quote.Price,
		change: stock.SharesOwned * (quote.Price - entry.Float64),
		known:  true,
	}
}

// priceRange returns the highest high and lowest low across bars.
// Both are invalid for an empty slice.
func priceRange(bars []model.PriceBar) (null.Float, null.Float) {
	if len(bars) == 0 {
		return null.Float{}, null.Float{}
	}

	highest, lowest := bars[0].High, bars[0].Low
	for _, bar := range bars[1:] {
		if bar.High > highest {
			highest = bar.High
		}
		if bar.Low < lowest {
			lowest = bar.Low
		}
	}

	return null.FloatFrom(round(highest)), null.FloatFrom(round(lowest))
}

// rankPerformances sorts performances in place by change percent, highest first.
// Stocks without a change percent sort last. Ties keep their input order.
func rankPerformances(perfs []model.StockPerformance) {
	sort.SliceStable(perfs, func(i, j int) bool {
		a, b := perfs[i].ChangePercent, perfs[j].ChangePercent
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		return a.Float64 > b.Float64
	})
}

// summarize aggregates ranked performances and their holdings into a report summary.
//
// Only known holdings contribute to the portfolio totals, which are summed unrounded
// and rounded once. The change percent is measured against the reconstructed
// starting value (value - change) and is 0 when there is no value or no base.
// The best and worst performers are the first and last ranked stocks that have a
// change percent; a single such stock is both. Both are nil when no stock has one.
func summarize(ranked []model.StockPerformance, holdings []holding) model.ReportSummary {
	summary := model.ReportSummary{TotalStocks: len(ranked)}

	var value, change float64
	for _, h := range holdings {
		if !h.known {
			continue
		}
		value += h.value
		change += h.change
	}

	summary.TotalPortfolioValue = round(value)
	summary.TotalPortfolioChange = round(change)
	if base := value - change; value > 0 && base != 0 {
		summary.TotalPortfolioChangePercent = round(change / base * 100)
	}

	for i := range ranked {
		if ranked[i].ChangePercent.Valid {
			summary.BestPerformer = &model.Performer{
				Ticker:        ranked[i].Ticker,
				ChangePercent: ranked[i].ChangePercent.Float64,
			}
			break
		}
	}
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].ChangePercent.Valid {
			summary.WorstPerformer = &model.Performer{
				Ticker:        ranked[i].Ticker,
				ChangePercent: ranked[i].ChangePercent.Float64,
			}
			break
		}
	}

	return summary
}
