package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrWatchlistNotFound indicates that a watchlist with the given ID does not exist.
	ErrWatchlistNotFound = errors.New("watchlist not found")

	// ErrAlertNotFound indicates that an alert with the given ID does not exist.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrReportNotFound indicates that a report with the given ID does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrQuoteUnavailable indicates that the quote provider returned no usable quote for a ticker.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrInsufficientData indicates that stored prices cannot support the requested calculation.
	ErrInsufficientData = errors.New("insufficient price data")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrAlertAlreadyTriggered indicates that an alert has already made its one-time
	// transition to triggered, so a second transition was refused.
	ErrAlertAlreadyTriggered = errors.New("alert already triggered")

	// ErrInvalidTicker indicates that a ticker symbol is empty or malformed.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	ErrInvalidDate = errors.New("date parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToGenerateReport  = errors.New("failed to generate report")
	ErrFailedToRetrieveReports = errors.New("failed to retrieve reports")
	ErrFailedToRetrieveQuote   = errors.New("failed to retrieve quote")
	ErrFailedToRetrieveHistory = errors.New("failed to retrieve price history")
)
