package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryEvictsOldest(t *testing.T) {
	t.Parallel()

	h := NewHistory(3)
	assert.Equal(t, 3, h.Cap())
	assert.Empty(t, h.Values())

	_, ok := h.Last()
	assert.False(t, ok)

	for _, p := range []float64{1, 2, 3, 4, 5} {
		h.Push(p)
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{3, 4, 5}, h.Values())

	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, 5.0, last)
}

func TestHistoryValuesIsACopy(t *testing.T) {
	t.Parallel()

	h := NewHistory(2)
	h.Push(1)
	h.Push(2)

	v := h.Values()
	v[0] = 99
	assert.Equal(t, []float64{1, 2}, h.Values())
}

func TestHistoryMinimumCapacity(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	h.Push(7)
	h.Push(8)
	assert.Equal(t, []float64{8}, h.Values())
}
