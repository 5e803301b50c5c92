package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// AlertType identifies how an alert threshold is compared against a quote.
type AlertType string

const (
	AlertTypePriceTarget   AlertType = "price_target"
	AlertTypePercentChange AlertType = "percent_change"
	AlertTypeVolumeSpike   AlertType = "volume_spike"
)

// AlertCondition is the comparison direction for price_target alerts.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Alert is a user-defined condition on a ticker that fires once when satisfied.
// An alert is created with Triggered=false and moves to Triggered=true exactly once;
// it is never evaluated again after that.
type Alert struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	WatchlistID    string      `json:"watchlistId"`
	Ticker         string      `json:"ticker"`
	AlertType      AlertType   `json:"alertType"`
	ThresholdValue float64     `json:"thresholdValue"`
	Condition      null.String `json:"condition"` // price_target only
	Triggered      bool        `json:"triggered"`
	TriggeredAt    null.Time   `json:"triggeredAt"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// ActiveAlert is an untriggered alert on an active watchlist, joined with the
// contact details needed to notify its owner.
type ActiveAlert struct {
	Alert
	UserEmail     string `json:"userEmail"`
	WatchlistName string `json:"watchlistName"`
}
