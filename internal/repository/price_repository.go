package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// PriceRepository provides data access methods for the price_data time series.
// Rows are keyed by (ticker, timestamp) and are only written through upserts.
type PriceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// WithTx returns a copy of the repository that runs its statements inside tx.
func (r *PriceRepository) WithTx(tx *sql.Tx) *PriceRepository {
	return &PriceRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const upsertBarQuery = `
	INSERT INTO price_data (ticker, timestamp, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (ticker, timestamp)
	DO UPDATE SET
		open = excluded.open,
		high = excluded.high,
		low = excluded.low,
		close = excluded.close,
		volume = excluded.volume
`

// UpsertBar writes a single bar. Writing the same (ticker, timestamp) twice
// overwrites the OHLCV values and leaves one row.
func (r *PriceRepository) UpsertBar(ctx context.Context, bar model.PriceBar) error {
	_, err := r.getQuerier().ExecContext(ctx, upsertBarQuery,
		strings.ToUpper(bar.Ticker),
		FormatTimestamp(bar.Timestamp),
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price bar for %s: %w", bar.Ticker, err)
	}
	return nil
}

// UpsertBars writes bars in a single transaction and returns how many were written.
func (r *PriceRepository) UpsertBars(ctx context.Context, bars []model.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txRepo := r.WithTx(tx)
	for _, bar := range bars {
		if err := txRepo.UpsertBar(ctx, bar); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit price bars: %w", err)
	}
	return len(bars), nil
}

// QueryBars returns the bars of ticker whose calendar date lies within [from, to],
// both inclusive, ordered by timestamp ascending. A range without bars yields an
// empty, non-nil slice.
func (r *PriceRepository) QueryBars(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	if from.After(to) {
		return nil, fmt.Errorf("from (%s) must be before or equal to to (%s)",
			FormatDate(from), FormatDate(to))
	}

	query := `
		SELECT ticker, timestamp, open, high, low, close, volume
		FROM price_data
		WHERE ticker = ?
		AND timestamp >= ?
		AND timestamp < ?
		ORDER BY timestamp ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query,
		strings.ToUpper(ticker),
		FormatTimestamp(startOfDay(from)),
		FormatTimestamp(startOfDay(to).AddDate(0, 0, 1)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_data table: %w", err)
	}
	defer rows.Close()

	bars := []model.PriceBar{}
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_data table: %w", err)
	}

	return bars, nil
}

// EarliestBarSince returns the first bar of ticker on or after the calendar date of since.
// Returns nil, nil if no such bar exists.
func (r *PriceRepository) EarliestBarSince(ctx context.Context, ticker string, since time.Time) (*model.PriceBar, error) {
	query := `
		SELECT ticker, timestamp, open, high, low, close, volume
		FROM price_data
		WHERE ticker = ? AND timestamp >= ?
		ORDER BY timestamp ASC
		LIMIT 1
	`
	return r.queryOne(ctx, query, strings.ToUpper(ticker), FormatTimestamp(startOfDay(since)))
}

// LatestBar returns the most recent bar of ticker, or nil, nil when none is stored.
func (r *PriceRepository) LatestBar(ctx context.Context, ticker string) (*model.PriceBar, error) {
	query := `
		SELECT ticker, timestamp, open, high, low, close, volume
		FROM price_data
		WHERE ticker = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, strings.ToUpper(ticker))
}

func (r *PriceRepository) queryOne(ctx context.Context, query string, args ...any) (*model.PriceBar, error) {
	bar, err := scanBar(r.getQuerier().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bar, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBar(row rowScanner) (model.PriceBar, error) {
	var bar model.PriceBar
	var timestampStr string

	err := row.Scan(
		&bar.Ticker,
		&timestampStr,
		&bar.Open,
		&bar.High,
		&bar.Low,
		&bar.Close,
		&bar.Volume,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PriceBar{}, err
	}
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("failed to scan price_data results: %w", err)
	}

	bar.Timestamp, err = ParseTime(timestampStr)
	if err != nil {
		return model.PriceBar{}, err
	}

	return bar, nil
}
