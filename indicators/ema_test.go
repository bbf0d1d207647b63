package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	t.Parallel()

	e, err := NewEMA(3)
	require.NoError(t, err)
	assert.Equal(t, "EMA(3)", e.Name())

	e.Update(10)
	e.Update(20)
	_, ok := e.Value()
	assert.False(t, ok)

	e.Update(30)
	v, ok := e.Value()
	require.True(t, ok)
	// alpha = 0.5: 10 -> 15 -> 22.5
	assert.InDelta(t, 22.5, v, 1e-9)

	e.Reset()
	assert.False(t, e.Ready())
}

func TestEMASeries(t *testing.T) {
	t.Parallel()

	s := EMASeries([]float64{10, 20, 30, 40}, 3)
	require.Len(t, s, 2)
	assert.InDelta(t, 22.5, s[0], 1e-9)
	assert.InDelta(t, 31.25, s[1], 1e-9)

	assert.Empty(t, EMASeries([]float64{1}, 3))
}
