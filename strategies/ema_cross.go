package strategies

import (
	"fmt"

	"github.com/rustyeddy/tradecore/indicators"
)

// EMACross is DualMA with exponential averages. EMAs react faster to the
// latest prices, so crosses fire earlier than with simple averages.
type EMACross struct {
	fast, slow int
	name       string
}

func NewEMACross(fast, slow int) (*EMACross, error) {
	if err := checkWindows(fast, slow); err != nil {
		return nil, err
	}
	return &EMACross{
		fast: fast,
		slow: slow,
		name: fmt.Sprintf("EMA_CROSS(%d,%d)", fast, slow),
	}, nil
}

func (x *EMACross) Name() string { return x.name }

// Warmup needs one point past the slow period so there are two slow values.
func (x *EMACross) Warmup() int { return x.slow + 1 }

func (x *EMACross) GenerateSignal(prices []float64) Signal {
	if len(prices) < x.Warmup() {
		return None
	}
	return crossSignal(
		indicators.EMASeries(prices, x.fast),
		indicators.EMASeries(prices, x.slow),
		x.slow-x.fast,
	)
}
