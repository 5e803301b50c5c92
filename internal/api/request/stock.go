// Package request parses and validates query parameters of incoming API requests.
package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/apperrors"
	"github.com/ndewijer/Watchlist-Monitor-Backend/internal/validation"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate parses a required date query parameter in YYYY-MM-DD or RFC3339 format.
// The field name is used in the returned validation error.
func ParseDate(field, param string) (time.Time, error) {
	str := strings.TrimSpace(param)
	if str == "" {
		return time.Time{}, &validation.Error{Fields: map[string]string{field: apperrors.ErrInvalidDate.Error()}}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &validation.Error{Fields: map[string]string{
		field: fmt.Sprintf("invalid date %q (use YYYY-MM-DD or RFC3339)", str),
	}}
}

// ParseDateRange parses the startDate and endDate query parameters.
// Both are required and the start must not be after the end.
func ParseDateRange(startParam, endParam string) (time.Time, time.Time, error) {
	fields := make(map[string]string)

	start, err := ParseDate("startDate", startParam)
	if err != nil {
		mergeFields(fields, err)
	}
	end, err := ParseDate("endDate", endParam)
	if err != nil {
		mergeFields(fields, err)
	}

	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &validation.Error{Fields: fields}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: startDate %s is after endDate %s",
			apperrors.ErrInvalidDateRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	return start, end, nil
}

func mergeFields(dst map[string]string, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		for k, v := range verr.Fields {
			dst[k] = v
		}
	}
}
