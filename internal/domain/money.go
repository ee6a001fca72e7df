package domain

import "math"

// ServiceFeeRate is the platform's cut of the rental cost, fixed at 10%.
const ServiceFeeRate = 0.10

// Cents converts a dollar amount to integer cents, rounding half away from
// zero. Processor APIs deal in cents; rental costs are stored in dollars.
func Cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// Dollars converts integer cents back to a dollar amount.
func Dollars(cents int64) float64 {
	return float64(cents) / 100
}
