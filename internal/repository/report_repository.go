package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// ReportRepository stores generated report snapshots as JSON documents.
// Reports are insert-only.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the provided database connection.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport persists report for its watchlist. A report without an ID is given a new UUID.
// Returns the stored report.
func (r *ReportRepository) SaveReport(ctx context.Context, report model.Report) (model.Report, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to encode report: %w", err)
	}

	query := `
		INSERT INTO reports (id, watchlist_id, report_data, generated_at)
		VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.WatchlistID,
		string(data),
		FormatTimestamp(report.GeneratedAt),
	); err != nil {
		return model.Report{}, fmt.Errorf("failed to insert report: %w", err)
	}

	return report, nil
}

// ListReports returns the reports of a watchlist, newest first.
func (r *ReportRepository) ListReports(ctx context.Context, watchlistID string) ([]model.Report, error) {
	query := `
		SELECT report_data
		FROM reports
		WHERE watchlist_id = ?
		ORDER BY generated_at DESC, rowid DESC
	`

	rows, err := r.db.QueryContext(ctx, query, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports table: %w", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan reports results: %w", err)
		}
		report, err := decodeReport(data)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports table: %w", err)
	}

	return reports, nil
}

// GetReport retrieves a single report by ID.
// Returns ErrReportNotFound if no report has that ID.
func (r *ReportRepository) GetReport(ctx context.Context, reportID string) (model.Report, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT report_data FROM reports WHERE id = ?`, reportID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Report{}, apperrors.ErrReportNotFound
	}
	if err != nil {
		return model.Report{}, fmt.Errorf("failed to query reports table: %w", err)
	}
	return decodeReport(data)
}

func decodeReport(data string) (model.Report, error) {
	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return model.Report{}, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}
