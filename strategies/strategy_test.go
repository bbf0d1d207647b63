package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LONG", Long.String())
	assert.Equal(t, "SHORT", Short.String())
	assert.Equal(t, "CLOSE_LONG", CloseLong.String())
	assert.Equal(t, "CLOSE_SHORT", CloseShort.String())
	assert.Equal(t, "NONE", None.String())

	assert.True(t, Long.Directional())
	assert.False(t, CloseShort.Directional())
}

func TestNewByName(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Name: "dual_ma", FastPeriod: 5, SlowPeriod: 20})
	require.NoError(t, err)
	assert.Equal(t, "DUAL_MA(5,20)", s.Name())
	assert.Equal(t, 20, s.Warmup())

	s, err = New(Config{Name: "EMA-Cross", FastPeriod: 3, SlowPeriod: 8})
	require.NoError(t, err)
	assert.Equal(t, "EMA_CROSS(3,8)", s.Name())

	s, err = New(Config{Name: "noop"})
	require.NoError(t, err)
	assert.Equal(t, None, s.GenerateSignal([]float64{1, 2, 3}))

	_, err = New(Config{Name: "martingale"})
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(Config{Name: "dual_ma", FastPeriod: 20, SlowPeriod: 5})
	assert.ErrorIs(t, err, ErrInvalidWindows)

	assert.Equal(t, []string{"dual_ma", "ema_cross", "noop"}, Names())
}

func TestParseSignal(t *testing.T) {
	t.Parallel()

	for _, s := range []Signal{None, Long, Short, CloseLong, CloseShort} {
		got, err := ParseSignal(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSignal("sideways")
	assert.Error(t, err)
}
