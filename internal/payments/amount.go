package payments

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("amount must be a positive finite number")
	ErrAmountTooLarge = errors.New("amount exceeds the supported range")
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit price to the gateway's integer minor
// units, rounding half up on the decimal value as written.
// 633.335 becomes 63334, not the 63333 that float multiplication gives.
func ToMinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}

	minor := decimal.NewFromFloat(price).Mul(hundred).Round(0)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrAmountTooLarge
	}
	if !minor.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// ExpectedTotal is the room rate times the number of nights.
func ExpectedTotal(rate float64, nights int) decimal.Decimal {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(int64(nights)))
}

// WithinTolerance reports whether |total - expected| <= tolerance.
func WithinTolerance(total float64, expected decimal.Decimal, tolerance float64) bool {
	diff := decimal.NewFromFloat(total).Sub(expected).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}
