package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/testutil"
)

// TestReportService_GenerateReport tests report generation end to end.
//
// WHY: Reports are the user-facing summary of a watchlist. Aggregates must only
// count stocks the user owns, and missing data for one ticker must surface as
// null fields rather than failing the whole report.
func TestReportService_GenerateReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("computes portfolio aggregates over owned stocks", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithName("Core").WithWindow(start, end).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "AAA").WithShares(10).WithEntryPrice(100).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "BBB").WithShares(0).WithEntryPrice(50).Build(t, db)

		provider := testutil.NewMockQuoteProvider().
			WithQuote("AAA", model.Quote{Price: 110}).
			WithQuote("BBB", model.Quote{Price: 60})
		svc := testutil.NewTestReportService(t, db, provider)

		// Execute
		report, err := svc.GenerateReport(context.Background(), wl.ID)

		// Assert
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		s := report.Summary
		if s.TotalStocks != 2 {
			t.Errorf("Expected 2 stocks, got %d", s.TotalStocks)
		}
		if s.TotalPortfolioValue != 1100 || s.TotalPortfolioChange != 100 || s.TotalPortfolioChangePercent != 10 {
			t.Errorf("Expected 1100 / 100 / 10.00, got %v / %v / %v",
				s.TotalPortfolioValue, s.TotalPortfolioChange, s.TotalPortfolioChangePercent)
		}
		if s.BestPerformer.Ticker != "BBB" || s.BestPerformer.ChangePercent != 20 {
			t.Errorf("Expected best performer BBB at 20%%, got %+v", s.BestPerformer)
		}
		if s.WorstPerformer.Ticker != "AAA" || s.WorstPerformer.ChangePercent != 10 {
			t.Errorf("Expected worst performer AAA at 10%%, got %+v", s.WorstPerformer)
		}
		if report.StockPerformances[0].Ticker != "BBB" {
			t.Errorf("Expected performances in ranked order, got %s first", report.StockPerformances[0].Ticker)
		}
		if report.WatchlistName != "Core" || report.ID == "" {
			t.Errorf("Expected named, identified report, got %+v", report)
		}
		testutil.AssertRowCount(t, db, "reports", 1)
	})

	t.Run("derives entry price from the first bar in the window", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithWindow(start, end).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "AAA").WithShares(1).Build(t, db)
		testutil.NewPriceBar("AAA", start.AddDate(0, 0, -3)).WithClose(10).Build(t, db)
		testutil.NewPriceBar("AAA", start.Add(15*time.Hour)).WithClose(40).WithRange(39, 41).Build(t, db)
		testutil.NewPriceBar("AAA", start.AddDate(0, 1, 0)).WithClose(45).WithRange(44, 48).Build(t, db)

		provider := testutil.NewMockQuoteProvider().WithQuote("AAA", model.Quote{Price: 50})
		svc := testutil.NewTestReportService(t, db, provider)

		report, err := svc.GenerateReport(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		perf := report.StockPerformances[0]
		if perf.EntryPrice.Float64 != 40 {
			t.Errorf("Expected entry price 40 from first in-window bar, got %v", perf.EntryPrice)
		}
		if perf.ChangePercent.Float64 != 25 {
			t.Errorf("Expected 25%% change, got %v", perf.ChangePercent)
		}
		if perf.HighestPrice.Float64 != 48 || perf.LowestPrice.Float64 != 39 {
			t.Errorf("Expected range 39-48 excluding the pre-window bar, got %v-%v", perf.LowestPrice, perf.HighestPrice)
		}
	})

	t.Run("missing data marks fields unavailable instead of failing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithWindow(start, end).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "NODATA").WithShares(5).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "AAA").WithShares(1).WithEntryPrice(10).Build(t, db)

		provider := testutil.NewMockQuoteProvider().WithQuote("AAA", model.Quote{Price: 12})
		svc := testutil.NewTestReportService(t, db, provider)

		report, err := svc.GenerateReport(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		var missing model.StockPerformance
		for _, p := range report.StockPerformances {
			if p.Ticker == "NODATA" {
				missing = p
			}
		}
		if missing.EntryPrice.Valid || missing.CurrentPrice.Valid || missing.HighestPrice.Valid || missing.LowestPrice.Valid {
			t.Errorf("Expected unavailable metrics for NODATA, got %+v", missing)
		}
		if report.StockPerformances[len(report.StockPerformances)-1].Ticker != "NODATA" {
			t.Error("Expected stock without change percent to rank last")
		}
		if report.Summary.TotalPortfolioValue != 12 {
			t.Errorf("Expected only AAA to contribute, got %v", report.Summary.TotalPortfolioValue)
		}
		if report.Summary.BestPerformer.Ticker != "AAA" || report.Summary.WorstPerformer.Ticker != "AAA" {
			t.Errorf("Expected AAA as both performers, got %+v", report.Summary)
		}
	})

	t.Run("empty watchlist produces an empty report", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithWindow(start, end).Build(t, db)
		svc := testutil.NewTestReportService(t, db, testutil.NewMockQuoteProvider())

		report, err := svc.GenerateReport(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		if report.Summary.TotalStocks != 0 || report.Summary.BestPerformer != nil {
			t.Errorf("Expected empty summary, got %+v", report.Summary)
		}
	})

	t.Run("unknown watchlist returns ErrWatchlistNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db, testutil.NewMockQuoteProvider())

		_, err := svc.GenerateReport(context.Background(), testutil.MakeID())
		if !errors.Is(err, apperrors.ErrWatchlistNotFound) {
			t.Errorf("Expected ErrWatchlistNotFound, got %v", err)
		}
		testutil.AssertRowCount(t, db, "reports", 0)
	})

	t.Run("inverted window returns ErrInvalidDateRange", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithWindow(end, start).Build(t, db)
		svc := testutil.NewTestReportService(t, db, testutil.NewMockQuoteProvider())

		_, err := svc.GenerateReport(context.Background(), wl.ID)
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("generation does not modify stocks or bars", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().WithWindow(start, end).Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "AAA").WithShares(1).Build(t, db)
		testutil.NewPriceBar("AAA", start).WithClose(10).Build(t, db)

		provider := testutil.NewMockQuoteProvider().WithQuote("AAA", model.Quote{Price: 11})
		svc := testutil.NewTestReportService(t, db, provider)

		if _, err := svc.GenerateReport(context.Background(), wl.ID); err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "watchlist_stocks WHERE entry_price IS NULL", 1)
		testutil.AssertRowCount(t, db, "price_data", 1)
	})
}

func TestReportService_ListAndGet(t *testing.T) {
	t.Run("lists newest first and fetches by id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		wl := testutil.NewWatchlist().Build(t, db)
		testutil.NewWatchlistStock(wl.ID, "AAA").WithShares(1).WithEntryPrice(1).Build(t, db)
		provider := testutil.NewMockQuoteProvider().WithQuote("AAA", model.Quote{Price: 2})
		svc := testutil.NewTestReportService(t, db, provider)

		first, err := svc.GenerateReport(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}
		second, err := svc.GenerateReport(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("GenerateReport() returned unexpected error: %v", err)
		}

		reports, err := svc.ListReports(context.Background(), wl.ID)
		if err != nil {
			t.Fatalf("ListReports() returned unexpected error: %v", err)
		}
		if len(reports) != 2 || reports[0].ID != second.ID || reports[1].ID != first.ID {
			t.Errorf("Expected [second, first], got %d reports", len(reports))
		}

		got, err := svc.GetReport(context.Background(), first.ID)
		if err != nil {
			t.Fatalf("GetReport() returned unexpected error: %v", err)
		}
		if got.Summary.TotalPortfolioValue != first.Summary.TotalPortfolioValue {
			t.Errorf("Expected stored snapshot to match, got %+v", got.Summary)
		}
	})

	t.Run("unknown report returns ErrReportNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db, testutil.NewMockQuoteProvider())

		if _, err := svc.GetReport(context.Background(), testutil.MakeID()); !errors.Is(err, apperrors.ErrReportNotFound) {
			t.Errorf("Expected ErrReportNotFound, got %v", err)
		}
	})

	t.Run("listing an unknown watchlist returns ErrWatchlistNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestReportService(t, db, testutil.NewMockQuoteProvider())

		if _, err := svc.ListReports(context.Background(), testutil.MakeID()); !errors.Is(err, apperrors.ErrWatchlistNotFound) {
			t.Errorf("Expected ErrWatchlistNotFound, got %v", err)
		}
	})
}
