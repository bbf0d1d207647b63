package market

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// ParsePrice converts a float price from a feed into an exact decimal.
//
// This is the only place floats enter the order book. NaN and Inf have no
// place in a sorted ledger, so they are rejected here rather than deep inside
// an update.
func ParsePrice(x float64) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPrice, x)
	}
	return decimal.NewFromFloat(x), nil
}

// ParseQuantity is ParsePrice for level sizes. Zero is allowed: it removes a level.
func ParseQuantity(x float64) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidQuantity, x)
	}
	return decimal.NewFromFloat(x), nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
