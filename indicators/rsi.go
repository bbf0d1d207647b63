package indicators

import "fmt"

// RSI is the relative strength index over the last period price changes,
// on a 0..100 scale. Above 70 is conventionally overbought, below 30 oversold.
//
// The first Update only seeds the baseline price; each later Update adds one
// delta. Averages are simple means over the window.
type RSI struct {
	period int

	gains, losses    window
	gainSum, lossSum float64
	lossCount        int // non-zero losses in the window
	last             float64
	haveLast         bool
}

func NewRSI(period int) (*RSI, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	return &RSI{
		period: period,
		gains:  newWindow(period),
		losses: newWindow(period),
	}, nil
}

func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }
func (r *RSI) Period() int  { return r.period }

func (r *RSI) Update(price float64) {
	if r.haveLast {
		change := price - r.last
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		r.gainSum += gain
		if old, ok := r.gains.push(gain); ok {
			r.gainSum -= old
		}

		r.lossSum += loss
		if loss != 0 {
			r.lossCount++
		}
		if old, ok := r.losses.push(loss); ok {
			r.lossSum -= old
			if old != 0 {
				r.lossCount--
			}
		}
	}
	r.last = price
	r.haveLast = true
}

func (r *RSI) Ready() bool {
	return r.haveLast && r.gains.len() >= r.period
}

func (r *RSI) Value() (float64, bool) {
	if !r.Ready() {
		return 0, false
	}
	// Running sums can leave float residue once every loss has left the
	// window, so zero loss is decided by count.
	if r.lossCount == 0 {
		return 100, true
	}
	n := float64(r.gains.len())
	avgGain := max(r.gainSum, 0) / n
	avgLoss := r.lossSum / n
	if avgLoss <= 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

func (r *RSI) Reset() {
	r.gains.reset()
	r.losses.reset()
	r.gainSum, r.lossSum = 0, 0
	r.lossCount = 0
	r.last = 0
	r.haveLast = false
}
