package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualMAWindowsValidated(t *testing.T) {
	t.Parallel()

	for _, w := range [][2]int{{3, 3}, {5, 2}, {0, 3}, {-1, 4}} {
		_, err := NewDualMA(w[0], w[1])
		assert.ErrorIs(t, err, ErrInvalidWindows, "fast=%d slow=%d", w[0], w[1])
	}
}

func TestDualMASignals(t *testing.T) {
	t.Parallel()

	s, err := NewDualMA(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.FastPeriod())
	assert.Equal(t, 3, s.SlowPeriod())

	tests := []struct {
		name   string
		prices []float64
		want   Signal
	}{
		{"crossover", []float64{1, 1, 1, 1, 2}, Long},
		{"crossunder", []float64{3, 3, 3, 3, 1}, Short},
		{"shorter than slow", []float64{1, 2}, None},
		{"empty", nil, None},
		{"flat", []float64{5, 5, 5, 5, 5}, None},
		{"already above", []float64{1, 2, 3, 4, 5}, None},
		// slow window exactly filled: one slow point is not enough to cross
		{"exactly slow", []float64{1, 1, 2}, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.GenerateSignal(tt.prices))
		})
	}
}

func TestDualMAOffsetGuard(t *testing.T) {
	t.Parallel()

	// fast=2, slow=5: offset 3, so the fast series needs 5 points (6 prices)
	s, err := NewDualMA(2, 5)
	require.NoError(t, err)

	// 5 prices give 4 fast points and 1 slow point
	assert.Equal(t, None, s.GenerateSignal([]float64{1, 1, 1, 1, 3}))

	// 7 prices: fast tail 1 -> 2, slow tail 1 -> 1.4
	assert.Equal(t, Long, s.GenerateSignal([]float64{1, 1, 1, 1, 1, 1, 3}))
}

func TestDualMAIsPure(t *testing.T) {
	t.Parallel()

	s, err := NewDualMA(2, 3)
	require.NoError(t, err)

	prices := []float64{1, 1, 1, 1, 2}
	snapshot := append([]float64(nil), prices...)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Long, s.GenerateSignal(prices))
	}
	assert.Equal(t, snapshot, prices)
}

func TestEMACross(t *testing.T) {
	t.Parallel()

	x, err := NewEMACross(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, x.Warmup())

	assert.Equal(t, Long, x.GenerateSignal([]float64{1, 1, 1, 1, 2}))
	assert.Equal(t, Short, x.GenerateSignal([]float64{3, 3, 3, 3, 1}))
	assert.Equal(t, None, x.GenerateSignal([]float64{1, 1, 2}))

	_, err = NewEMACross(4, 4)
	assert.ErrorIs(t, err, ErrInvalidWindows)
}
