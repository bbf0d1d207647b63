package indicators

import "fmt"

// EMA computes an exponential moving average.
//
// It seeds with the first observation and is Ready after period updates.
type EMA struct {
	period int
	alpha  float64

	seen  int
	value float64
}

func NewEMA(period int) (*EMA, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}, nil
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }
func (e *EMA) Period() int  { return e.period }
func (e *EMA) Ready() bool  { return e.seen >= e.period }

func (e *EMA) Update(v float64) {
	e.seen++
	if e.seen == 1 {
		e.value = v
		return
	}
	e.value = e.alpha*v + (1.0-e.alpha)*e.value
}

func (e *EMA) Value() (float64, bool) {
	if !e.Ready() {
		return 0, false
	}
	return e.value, true
}

func (e *EMA) Reset() {
	e.seen = 0
	e.value = 0
}

// EMASeries returns the EMA value at every index from period-1 on, matching
// the shape of SMASeries.
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}
	e, _ := NewEMA(period)
	out := make([]float64, 0, len(prices)-period+1)
	for _, p := range prices {
		e.Update(p)
		if v, ok := e.Value(); ok {
			out = append(out, v)
		}
	}
	return out
}
