package indicators

import "fmt"

// SMA is a streaming simple moving average.
type SMA struct {
	period int
	win    window
	sum    float64
}

func NewSMA(period int) (*SMA, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	return &SMA{period: period, win: newWindow(period)}, nil
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.period) }
func (m *SMA) Period() int  { return m.period }

func (m *SMA) Update(v float64) {
	m.sum += v
	if old, evicted := m.win.push(v); evicted {
		m.sum -= old
	}
}

func (m *SMA) Ready() bool {
	return m.win.len() >= m.period
}

func (m *SMA) Value() (float64, bool) {
	if !m.Ready() {
		return 0, false
	}
	return m.sum / float64(m.win.len()), true
}

func (m *SMA) Reset() {
	m.win.reset()
	m.sum = 0
}

// SMASeries computes the moving average at every index where a full window
// is available, using one running sum. The result has len(prices)-period+1
// entries, or none if prices is shorter than period.
func SMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	out := make([]float64, 0, len(prices)-period+1)
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out
}
