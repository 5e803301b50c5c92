package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/model"
)

// EvaluationResult summarises one alert evaluation pass.
type EvaluationResult struct {
	Checked   int `json:"checked"`
	Triggered int `json:"triggered"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// AlertService evaluates pending alerts against current quotes and notifies
// owners of the ones that fire.
type AlertService struct {
	alerts   AlertStore
	quotes   QuoteSource
	notifier NotificationSender
	now      func() time.Time
}

// NewAlertService creates an AlertService.
func NewAlertService(alerts AlertStore, quotes QuoteSource, notifier NotificationSender) *AlertService {
	return &AlertService{
		alerts:   alerts,
		quotes:   quotes,
		notifier: notifier,
		now:      time.Now,
	}
}

// EvaluateAll runs one evaluation pass over every untriggered alert on an active watchlist.
//
// An alert whose quote is unavailable is skipped and retried next pass. A satisfied
// alert is marked triggered through the store's conditional update before its owner
// is notified; if another pass got there first, no notification is sent.
// Failures on one alert are logged and do not stop the pass. Only failing to load
// the alerts returns an error.
func (s *AlertService) EvaluateAll(ctx context.Context) (EvaluationResult, error) {
	alerts, err := s.alerts.ListActiveAlerts(ctx)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to load active alerts: %w", err)
	}

	var result EvaluationResult
	if len(alerts) == 0 {
		return result, nil
	}

	log.Printf("[INFO] checking %d alerts", len(alerts))

	for _, alert := range alerts {
		result.Checked++

		quote, err := s.quotes.GetQuote(ctx, alert.Ticker)
		if err != nil {
			result.Skipped++
			log.Printf("[WARN] skipping alert %s for %s: %v", alert.ID, alert.Ticker, err)
			continue
		}

		if !Evaluate(alert.Alert, *quote) {
			continue
		}

		if err := s.trigger(ctx, alert, *quote); err != nil {
			if errors.Is(err, apperrors.ErrAlertAlreadyTriggered) {
				log.Printf("[INFO] alert %s was already triggered by another pass", alert.ID)
				continue
			}
			result.Failed++
			log.Printf("[ERROR] error triggering alert %s: %v", alert.ID, err)
			continue
		}

		result.Triggered++
		log.Printf("[INFO] alert triggered for %s: %s", alert.Ticker, alert.AlertType)
	}

	return result, nil
}

func (s *AlertService) trigger(ctx context.Context, alert model.ActiveAlert, quote model.Quote) error {
	if err := s.alerts.MarkTriggered(ctx, alert.ID, s.now()); err != nil {
		return err
	}

	subject, body := formatAlertNotification(alert, quote)
	if err := s.notifier.Send(ctx, alert.UserEmail, subject, body); err != nil {
		// The alert stays triggered; the notification is not retried.
		return fmt.Errorf("alert marked triggered but notification failed: %w", err)
	}
	return nil
}

// Evaluate reports whether quote satisfies alert.
//
//   - price_target: price >= threshold for "above", price <= threshold for "below"
//   - percent_change: |changePercent| >= threshold, in either direction
//   - volume_spike: volume >= threshold
//
// Triggered alerts and unknown alert types never evaluate to true.
func Evaluate(alert model.Alert, quote model.Quote) bool {
	if alert.Triggered {
		return false
	}

	switch alert.AlertType {
	case model.AlertTypePriceTarget:
		switch model.AlertCondition(alert.Condition.ValueOrZero()) {
		case model.ConditionAbove:
			return quote.Price >= alert.ThresholdValue
		case model.ConditionBelow:
			return quote.Price <= alert.ThresholdValue
		}
	case model.AlertTypePercentChange:
		return math.Abs(quote.ChangePercent) >= alert.ThresholdValue
	case model.AlertTypeVolumeSpike:
		return float64(quote.Volume) >= alert.ThresholdValue
	}
	return false
}

func formatAlertNotification(alert model.ActiveAlert, quote model.Quote) (string, string) {
	subject := fmt.Sprintf("Stock Alert: %s", alert.Ticker)

	var b strings.Builder
	fmt.Fprintf(&b, "Your alert for %s has been triggered!\n\n", alert.Ticker)
	fmt.Fprintf(&b, "Watchlist: %s\n", alert.WatchlistName)
	fmt.Fprintf(&b, "Alert Type: %s\n", alert.AlertType)
	if alert.Condition.Valid {
		fmt.Fprintf(&b, "Condition: %s\n", alert.Condition.String)
	}
	fmt.Fprintf(&b, "Threshold: %g\n\n", alert.ThresholdValue)
	fmt.Fprintf(&b, "Current Price: $%.2f\n", quote.Price)
	fmt.Fprintf(&b, "Change: %.2f (%.2f%%)\n", quote.Change, quote.ChangePercent)
	fmt.Fprintf(&b, "Volume: %d\n\n", quote.Volume)
	b.WriteString("View your watchlist for more details.\n")

	return subject, b.String()
}
