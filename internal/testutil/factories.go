package testutil

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().WithEmail("jane@example.com").Build(t, db)
type UserBuilder struct {
	ID    string
	Email string
	Name  string
}

// NewUser creates a UserBuilder with a unique email.
func NewUser() *UserBuilder {
	id := MakeID()
	return &UserBuilder{
		ID:    id,
		Email: "user-" + id[:8] + "@example.com",
		Name:  "Test User",
	}
}

// WithEmail sets a custom email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// Build creates the user in the database and returns its ID.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) string {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, email, name) VALUES (?, ?, ?)`, b.ID, b.Email, b.Name)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return b.ID
}

// WatchlistBuilder provides a fluent interface for creating test watchlists.
// A user is created for the watchlist unless WithUser is given.
//
// Example usage:
//
//	// Active watchlist covering the last 30 days
//	wl := testutil.NewWatchlist().Build(t, db)
//
//	// Inactive watchlist with a fixed window
//	wl := testutil.NewWatchlist().
//	    WithWindow(start, end).
//	    WithStatus("archived").
//	    Build(t, db)
type WatchlistBuilder struct {
	ID        string
	UserID    string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// NewWatchlist creates a WatchlistBuilder with sensible defaults.
func NewWatchlist() *WatchlistBuilder {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return &WatchlistBuilder{
		ID:        MakeID(),
		Name:      "Test Watchlist",
		StartDate: today.AddDate(0, 0, -30),
		EndDate:   today,
		Status:    model.WatchlistStatusActive,
	}
}

// WithID sets a custom ID.
func (b *WatchlistBuilder) WithID(id string) *WatchlistBuilder {
	b.ID = id
	return b
}

// WithUser sets the owning user.
func (b *WatchlistBuilder) WithUser(userID string) *WatchlistBuilder {
	b.UserID = userID
	return b
}

// WithName sets a custom name.
func (b *WatchlistBuilder) WithName(name string) *WatchlistBuilder {
	b.Name = name
	return b
}

// WithWindow sets the start and end dates.
func (b *WatchlistBuilder) WithWindow(start, end time.Time) *WatchlistBuilder {
	b.StartDate = start
	b.EndDate = end
	return b
}

// WithStatus sets the status.
func (b *WatchlistBuilder) WithStatus(status string) *WatchlistBuilder {
	b.Status = status
	return b
}

// Build creates the watchlist in the database and returns it.
func (b *WatchlistBuilder) Build(t *testing.T, db *sql.DB) model.Watchlist {
	t.Helper()

	if b.UserID == "" {
		b.UserID = NewUser().Build(t, db)
	}

	query := `
		INSERT INTO watchlists (id, user_id, name, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.UserID, b.Name,
		b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"), b.Status)
	if err != nil {
		t.Fatalf("Failed to create test watchlist: %v", err)
	}

	return model.Watchlist{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    b.Status,
	}
}

// WatchlistStockBuilder provides a fluent interface for adding stocks to a watchlist.
//
// Example usage:
//
//	testutil.NewWatchlistStock(wl.ID, "AAPL").WithShares(10).WithEntryPrice(100).Build(t, db)
type WatchlistStockBuilder struct {
	ID          string
	WatchlistID string
	Ticker      string
	SharesOwned float64
	EntryPrice  null.Float
}

// NewWatchlistStock creates a WatchlistStockBuilder with no shares and no entry price.
func NewWatchlistStock(watchlistID, ticker string) *WatchlistStockBuilder {
	return &WatchlistStockBuilder{
		ID:          MakeID(),
		WatchlistID: watchlistID,
		Ticker:      strings.ToUpper(ticker),
	}
}

// WithShares sets the number of shares owned.
func (b *WatchlistStockBuilder) WithShares(shares float64) *WatchlistStockBuilder {
	b.SharesOwned = shares
	return b
}

// WithEntryPrice sets a stored entry price.
func (b *WatchlistStockBuilder) WithEntryPrice(price float64) *WatchlistStockBuilder {
	b.EntryPrice = null.FloatFrom(price)
	return b
}

// Build creates the watchlist stock in the database and returns it.
func (b *WatchlistStockBuilder) Build(t *testing.T, db *sql.DB) model.WatchlistStock {
	t.Helper()

	query := `
		INSERT INTO watchlist_stocks (id, watchlist_id, ticker, shares_owned, entry_price)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.WatchlistID, b.Ticker, b.SharesOwned, b.EntryPrice)
	if err != nil {
		t.Fatalf("Failed to create test watchlist stock: %v", err)
	}

	return model.WatchlistStock{
		ID:          b.ID,
		WatchlistID: b.WatchlistID,
		Ticker:      b.Ticker,
		SharesOwned: b.SharesOwned,
		EntryPrice:  b.EntryPrice,
	}
}

// AlertBuilder provides a fluent interface for creating test alerts.
//
// Example usage:
//
//	alert := testutil.NewAlert(wl, "AAPL").PriceTarget(150, model.ConditionAbove).Build(t, db)
type AlertBuilder struct {
	ID             string
	UserID         string
	WatchlistID    string
	Ticker         string
	AlertType      model.AlertType
	ThresholdValue float64
	Condition      null.String
	IsTriggered    bool
	CreatedAt      time.Time
}

// NewAlert creates an untriggered percent_change alert with a threshold of 5
// on a ticker of the given watchlist, owned by the watchlist's user.
func NewAlert(watchlist model.Watchlist, ticker string) *AlertBuilder {
	return &AlertBuilder{
		ID:             MakeID(),
		UserID:         watchlist.UserID,
		WatchlistID:    watchlist.ID,
		Ticker:         strings.ToUpper(ticker),
		AlertType:      model.AlertTypePercentChange,
		ThresholdValue: 5,
		CreatedAt:      time.Now().UTC(),
	}
}

// PriceTarget makes the alert a price_target alert.
func (b *AlertBuilder) PriceTarget(threshold float64, condition model.AlertCondition) *AlertBuilder {
	b.AlertType = model.AlertTypePriceTarget
	b.ThresholdValue = threshold
	b.Condition = null.StringFrom(string(condition))
	return b
}

// PercentChange makes the alert a percent_change alert.
func (b *AlertBuilder) PercentChange(threshold float64) *AlertBuilder {
	b.AlertType = model.AlertTypePercentChange
	b.ThresholdValue = threshold
	b.Condition = null.String{}
	return b
}

// VolumeSpike makes the alert a volume_spike alert.
func (b *AlertBuilder) VolumeSpike(threshold float64) *AlertBuilder {
	b.AlertType = model.AlertTypeVolumeSpike
	b.ThresholdValue = threshold
	b.Condition = null.String{}
	return b
}

// Triggered marks the alert as already triggered.
func (b *AlertBuilder) Triggered() *AlertBuilder {
	b.IsTriggered = true
	return b
}

// WithCreatedAt sets the creation time, which orders evaluation.
func (b *AlertBuilder) WithCreatedAt(at time.Time) *AlertBuilder {
	b.CreatedAt = at
	return b
}

// Build creates the alert in the database and returns it.
func (b *AlertBuilder) Build(t *testing.T, db *sql.DB) model.Alert {
	t.Helper()

	var triggeredAt null.String
	if b.IsTriggered {
		triggeredAt = null.StringFrom(b.CreatedAt.UTC().Format(time.RFC3339))
	}

	query := `
		INSERT INTO alerts (id, user_id, watchlist_id, ticker, alert_type, threshold_value,
			condition, triggered, triggered_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.UserID, b.WatchlistID, b.Ticker, string(b.AlertType), b.ThresholdValue,
		b.Condition, b.IsTriggered, triggeredAt, b.CreatedAt.UTC().Truncate(time.Second).Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test alert: %v", err)
	}

	return model.Alert{
		ID:             b.ID,
		UserID:         b.UserID,
		WatchlistID:    b.WatchlistID,
		Ticker:         b.Ticker,
		AlertType:      b.AlertType,
		ThresholdValue: b.ThresholdValue,
		Condition:      b.Condition,
		Triggered:      b.IsTriggered,
		CreatedAt:      b.CreatedAt.UTC().Truncate(time.Second),
	}
}

// PriceBarBuilder provides a fluent interface for creating test price bars.
//
// Example usage:
//
//	testutil.NewPriceBar("AAPL", day).WithClose(101).WithRange(99, 103).Build(t, db)
type PriceBarBuilder struct {
	bar model.PriceBar
}

// NewPriceBar creates a bar with open, high, low and close of 100.
func NewPriceBar(ticker string, at time.Time) *PriceBarBuilder {
	return &PriceBarBuilder{bar: model.PriceBar{
		Ticker:    strings.ToUpper(ticker),
		Timestamp: at.UTC().Truncate(time.Second),
		Open:      100,
		High:      100,
		Low:       100,
		Close:     100,
		Volume:    1000,
	}}
}

// WithClose sets the close price.
func (b *PriceBarBuilder) WithClose(price float64) *PriceBarBuilder {
	b.bar.Close = price
	return b
}

// WithRange sets the low and high prices.
func (b *PriceBarBuilder) WithRange(low, high float64) *PriceBarBuilder {
	b.bar.Low = low
	b.bar.High = high
	return b
}

// WithVolume sets the volume.
func (b *PriceBarBuilder) WithVolume(volume int64) *PriceBarBuilder {
	b.bar.Volume = volume
	return b
}

// Build creates the bar in the database and returns it.
func (b *PriceBarBuilder) Build(t *testing.T, db *sql.DB) model.PriceBar {
	t.Helper()

	query := `
		INSERT INTO price_data (ticker, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.bar.Ticker, b.bar.Timestamp.Format(time.RFC3339),
		b.bar.Open, b.bar.High, b.bar.Low, b.bar.Close, b.bar.Volume)
	if err != nil {
		t.Fatalf("Failed to create test price bar: %v", err)
	}
	return b.bar
}

// Convenience functions

// CreateWatchlistWithStocks creates an active watchlist holding the given tickers,
// with no shares and no entry prices.
//
// Example usage:
//
//	wl := testutil.CreateWatchlistWithStocks(t, db, "AAPL", "MSFT")
func CreateWatchlistWithStocks(t *testing.T, db *sql.DB, tickers ...string) model.Watchlist {
	t.Helper()

	wl := NewWatchlist().Build(t, db)
	for _, ticker := range tickers {
		NewWatchlistStock(wl.ID, ticker).Build(t, db)
	}
	return wl
}
