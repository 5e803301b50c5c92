package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// AlertRepository provides data access methods for the alerts table.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new AlertRepository with the provided database connection.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ListActiveAlerts returns every untriggered alert whose watchlist is active,
// joined with the owner's email and the watchlist name.
func (r *AlertRepository) ListActiveAlerts(ctx context.Context) ([]model.ActiveAlert, error) {
	query := `
		SELECT a.id, a.user_id, a.watchlist_id, a.ticker, a.alert_type, a.threshold_value,
			a.condition, a.triggered, a.triggered_at, a.created_at,
			u.email, w.name
		FROM alerts a
		JOIN users u ON a.user_id = u.id
		JOIN watchlists w ON a.watchlist_id = w.id
		WHERE a.triggered = 0 AND w.status = ?
		ORDER BY a.created_at ASC, a.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, model.WatchlistStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	alerts := []model.ActiveAlert{}
	for rows.Next() {
		var a model.ActiveAlert
		var triggeredAt sql.NullString
		var createdAt string

		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.WatchlistID,
			&a.Ticker,
			&a.AlertType,
			&a.ThresholdValue,
			&a.Condition,
			&a.Triggered,
			&triggeredAt,
			&createdAt,
			&a.UserEmail,
			&a.WatchlistName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan active alerts: %w", err)
		}

		if err := fillAlertTimes(&a.Alert, triggeredAt, createdAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active alerts: %w", err)
	}

	return alerts, nil
}

// GetAlert retrieves a single alert by ID.
// Returns ErrAlertNotFound if no alert has that ID.
func (r *AlertRepository) GetAlert(ctx context.Context, alertID string) (model.Alert, error) {
	query := `
		SELECT id, user_id, watchlist_id, ticker, alert_type, threshold_value,
			condition, triggered, triggered_at, created_at
		FROM alerts
		WHERE id = ?
	`

	var a model.Alert
	var triggeredAt sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, alertID).Scan(
		&a.ID,
		&a.UserID,
		&a.WatchlistID,
		&a.Ticker,
		&a.AlertType,
		&a.ThresholdValue,
		&a.Condition,
		&a.Triggered,
		&triggeredAt,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Alert{}, apperrors.ErrAlertNotFound
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("failed to query alerts table: %w", err)
	}

	if err := fillAlertTimes(&a, triggeredAt, createdAt); err != nil {
		return model.Alert{}, err
	}
	return a, nil
}

// MarkTriggered moves an alert to its triggered state in a single conditional update.
// Only the first caller succeeds: if the alert was already triggered it returns
// ErrAlertAlreadyTriggered, and if it does not exist it returns ErrAlertNotFound.
func (r *AlertRepository) MarkTriggered(ctx context.Context, alertID string, at time.Time) error {
	query := `
		UPDATE alerts
		SET triggered = 1, triggered_at = ?
		WHERE id = ? AND triggered = 0
	`

	result, err := r.db.ExecContext(ctx, query, FormatTimestamp(at), alertID)
	if err != nil {
		return fmt.Errorf("failed to mark alert %s triggered: %w", alertID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetAlert(ctx, alertID); err != nil {
			return err
		}
		return apperrors.ErrAlertAlreadyTriggered
	}

	return nil
}

func fillAlertTimes(a *model.Alert, triggeredAt sql.NullString, createdAt string) error {
	var err error
	if a.CreatedAt, err = ParseTime(createdAt); err != nil {
		return err
	}
	if triggeredAt.Valid {
		t, err := ParseTime(triggeredAt.String)
		if err != nil {
			return err
		}
		a.TriggeredAt.SetValid(t)
	}
	return nil
}
