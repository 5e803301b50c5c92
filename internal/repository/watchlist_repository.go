package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// WatchlistRepository provides read access to watchlists and the stocks they track.
// Watchlist CRUD lives outside this service; the pipeline only reads.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// GetWatchlist retrieves a single watchlist by ID.
// Returns ErrWatchlistNotFound if no watchlist has that ID.
func (r *WatchlistRepository) GetWatchlist(ctx context.Context, watchlistID string) (model.Watchlist, error) {
	query := `
		SELECT id, user_id, name, start_date, end_date, status
		FROM watchlists
		WHERE id = ?
	`

	var w model.Watchlist
	var startStr, endStr string

	err := r.db.QueryRowContext(ctx, query, watchlistID).Scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&startStr,
		&endStr,
		&w.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Watchlist{}, apperrors.ErrWatchlistNotFound
	}
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to query watchlists table: %w", err)
	}

	if w.StartDate, err = ParseTime(startStr); err != nil {
		return model.Watchlist{}, err
	}
	if w.EndDate, err = ParseTime(endStr); err != nil {
		return model.Watchlist{}, err
	}

	return w, nil
}

// GetWatchlistStocks retrieves the stocks of a watchlist in insertion order.
// Returns an empty slice if the watchlist tracks no stocks.
func (r *WatchlistRepository) GetWatchlistStocks(ctx context.Context, watchlistID string) ([]model.WatchlistStock, error) {
	query := `
		SELECT id, watchlist_id, ticker, shares_owned, entry_price
		FROM watchlist_stocks
		WHERE watchlist_id = ?
		ORDER BY added_at ASC, rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist_stocks table: %w", err)
	}
	defer rows.Close()

	stocks := []model.WatchlistStock{}
	for rows.Next() {
		var s model.WatchlistStock
		if err := rows.Scan(
			&s.ID,
			&s.WatchlistID,
			&s.Ticker,
			&s.SharesOwned,
			&s.EntryPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist_stocks results: %w", err)
		}
		stocks = append(stocks, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist_stocks table: %w", err)
	}

	return stocks, nil
}

// ListActiveTickers returns the distinct tickers tracked by any active watchlist,
// in alphabetical order. Tickers that only appear on inactive watchlists are excluded.
func (r *WatchlistRepository) ListActiveTickers(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT ws.ticker
		FROM watchlist_stocks ws
		JOIN watchlists w ON ws.watchlist_id = w.id
		WHERE w.status = ?
		ORDER BY ws.ticker ASC
	`

	rows, err := r.db.QueryContext(ctx, query, model.WatchlistStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan active tickers: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active tickers: %w", err)
	}

	return tickers, nil
}
