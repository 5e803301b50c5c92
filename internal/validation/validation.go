package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID   = fmt.Errorf("invalid UUID format")
	ErrInvalidTicker = fmt.Errorf("invalid ticker symbol")
)

// tickerPattern accepts exchange symbols such as AAPL, BRK.B, RDS-A or ASML.AS.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=]{0,9}$`)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateTicker checks that ticker looks like an exchange symbol.
// Matching is case insensitive; surrounding whitespace is ignored.
func ValidateTicker(ticker string) error {
	if !tickerPattern.MatchString(strings.ToUpper(strings.TrimSpace(ticker))) {
		return fmt.Errorf("%w: %q", ErrInvalidTicker, ticker)
	}
	return nil
}
