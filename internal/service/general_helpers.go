package service

import "github.com/shopspring/decimal"

// RoundingPrecision is the number of decimal places used for monetary values
// and percentages in reports.
const RoundingPrecision = 2

// round rounds a float64 value to two decimal places, half away from zero.
// Values are rounded through their shortest decimal representation so that
// inputs like 1.005 round to 1.01 rather than suffering binary drift.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(0.005)       // returns 0.01
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return decimal.NewFromFloat(value).Round(RoundingPrecision).InexactFloat64()
}
