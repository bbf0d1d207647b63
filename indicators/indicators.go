// Package indicators provides streaming technical indicators that are fed one
// observation at a time. Updates are O(1): each indicator keeps a fixed
// window and a running aggregate instead of recomputing over the window.
package indicators

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPeriod = errors.New("indicator period must be > 0")

// Indicator computes a single streaming value from prices.
// It is deterministic and safe to use in live and replayed runs, but not
// for concurrent use.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Period is the window length fixed at construction.
	Period() int

	// Update consumes the next observation.
	Update(v float64)

	// Value returns the current value, or false until Ready.
	Value() (float64, bool)

	// Ready reports whether enough observations have been seen.
	Ready() bool

	// Reset clears accumulated state. Period is unchanged.
	Reset()
}

// New builds an indicator by kind: "sma", "ema" or "rsi".
func New(kind string, period int) (Indicator, error) {
	switch strings.ToLower(kind) {
	case "sma", "ma":
		return NewSMA(period)
	case "ema":
		return NewEMA(period)
	case "rsi":
		return NewRSI(period)
	}
	return nil, fmt.Errorf("unknown indicator %q", kind)
}

func checkPeriod(period int) error {
	if period <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidPeriod, period)
	}
	return nil
}

// CrossedOver reports fast moving from at-or-below slow to above it.
func CrossedOver(fastPrev, fastCurr, slowPrev, slowCurr float64) bool {
	return fastPrev <= slowPrev && fastCurr > slowCurr
}

// CrossedUnder reports fast moving from at-or-above slow to below it.
func CrossedUnder(fastPrev, fastCurr, slowPrev, slowCurr float64) bool {
	return fastPrev >= slowPrev && fastCurr < slowCurr
}

// window is a fixed-capacity FIFO of the most recent observations.
type window struct {
	buf  []float64
	head int // index of the oldest value
	n    int
}

func newWindow(size int) window {
	return window{buf: make([]float64, size)}
}

// push appends v and returns the value it evicted, if the window was full.
func (w *window) push(v float64) (float64, bool) {
	if w.n < len(w.buf) {
		w.buf[(w.head+w.n)%len(w.buf)] = v
		w.n++
		return 0, false
	}
	old := w.buf[w.head]
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	return old, true
}

func (w *window) len() int { return w.n }

func (w *window) reset() {
	w.head = 0
	w.n = 0
}
