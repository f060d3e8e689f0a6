package pricing

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a decimal amount cannot be represented as Money.
var ErrInvalidAmount = errors.New("pricing: invalid amount")

// maxMajor keeps cents conversion inside int64 without precision loss.
const maxMajor = 90_000_000_000_000

// FromMajor converts a decimal amount in major units (e.g. 12.5 EUR) to cents.
// The amount is read as its shortest decimal form and rounded half away from
// zero, so 1.005 becomes 101. NaN, infinities and negative values are rejected.
func FromMajor(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxMajor {
		return 0, ErrInvalidAmount
	}
	return Money(decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()), nil
}

// Major converts cents back to a decimal amount in major units.
func Major(m Money) float64 {
	return float64(m) / 100
}
