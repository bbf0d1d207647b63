package strategies

import (
	"fmt"

	"github.com/rustyeddy/tradecore/indicators"
)

// DualMA signals when a fast simple moving average crosses a slow one.
type DualMA struct {
	fast, slow int
	name       string
}

func NewDualMA(fast, slow int) (*DualMA, error) {
	if err := checkWindows(fast, slow); err != nil {
		return nil, err
	}
	return &DualMA{
		fast: fast,
		slow: slow,
		name: fmt.Sprintf("DUAL_MA(%d,%d)", fast, slow),
	}, nil
}

func (s *DualMA) Name() string    { return s.name }
func (s *DualMA) Warmup() int     { return s.slow }
func (s *DualMA) FastPeriod() int { return s.fast }
func (s *DualMA) SlowPeriod() int { return s.slow }

func (s *DualMA) GenerateSignal(prices []float64) Signal {
	if len(prices) < s.slow {
		return None
	}
	return crossSignal(
		indicators.SMASeries(prices, s.fast),
		indicators.SMASeries(prices, s.slow),
		s.slow-s.fast,
	)
}

// crossSignal compares the last two points of each series.
//
// The slow series starts offset observations later than the fast one, but
// both end on the most recent price, so their tails line up without
// re-indexing. The fast series must still have offset+2 points.
func crossSignal(fast, slow []float64, offset int) Signal {
	if len(fast) < 2 || len(slow) < 2 {
		return None
	}
	if len(fast) < offset+2 {
		return None
	}

	fastPrev, fastCurr := fast[len(fast)-2], fast[len(fast)-1]
	slowPrev, slowCurr := slow[len(slow)-2], slow[len(slow)-1]

	switch {
	case indicators.CrossedOver(fastPrev, fastCurr, slowPrev, slowCurr):
		return Long
	case indicators.CrossedUnder(fastPrev, fastCurr, slowPrev, slowCurr):
		return Short
	default:
		return None
	}
}
