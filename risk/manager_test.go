package risk

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(DefaultConfig(), 10000, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestNewManagerRejectsBadCapital(t *testing.T) {
	t.Parallel()

	for _, c := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewManager(DefaultConfig(), c, zerolog.Nop())
		assert.ErrorIs(t, err, ErrInvalidCapital, "capital=%v", c)
	}

	_, err := NewManager(Config{}, 10000, zerolog.Nop())
	assert.Error(t, err)
}

func TestCheckCanTradeDailyLoss(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.CheckCanTrade("BTCUSDT"))

	// exactly at the limit is still allowed
	require.NoError(t, m.UpdateDailyPnL(-300))
	require.NoError(t, m.CheckCanTrade("BTCUSDT"))

	require.NoError(t, m.UpdateDailyPnL(-50))
	assert.InDelta(t, -350, m.DailyPnL(), 1e-9)

	err := m.CheckCanTrade("BTCUSDT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDailyLossExceeded)

	r, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, DailyLossExceeded, r.Kind)
	assert.InDelta(t, -0.035, r.Current, 1e-12)
	assert.InDelta(t, 0.03, r.Limit, 1e-12)
	assert.Equal(t, "daily loss limit exceeded: -3.50% < -3.00%", err.Error())

	m.ResetDailyPnL()
	assert.Zero(t, m.DailyPnL())
	assert.NoError(t, m.CheckCanTrade("BTCUSDT"))
}

func TestCheckCanTradeTotalPosition(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.UpdatePosition("A", 3000))
	require.NoError(t, m.UpdatePosition("B", 3000))
	require.NoError(t, m.UpdatePosition("C", 1000))
	require.NoError(t, m.CheckCanTrade("A"))

	require.NoError(t, m.UpdatePosition("C", 2000))
	assert.InDelta(t, 8000, m.TotalPositionValue(), 1e-9)

	err := m.CheckCanTrade("A")
	assert.ErrorIs(t, err, ErrTotalPositionExceeded)
	assert.Equal(t, "total position ratio exceeded: 80.00% > 70.00%", err.Error())
}

func TestCheckCanTradeOrder(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.UpdatePosition("A", 9000))
	require.NoError(t, m.UpdateDailyPnL(-1000))

	// both limits are violated; daily loss is checked first
	err := m.CheckCanTrade("A")
	assert.ErrorIs(t, err, ErrDailyLossExceeded)
	assert.False(t, errors.Is(err, ErrTotalPositionExceeded))
}

func TestCheckPositionLimit(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.UpdatePosition("X", 3000))

	require.NoError(t, m.CheckPositionLimit("X", 0))
	require.NoError(t, m.CheckPositionLimit("Y", 3000))

	err := m.CheckPositionLimit("X", 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPositionLimitExceeded)

	var r *Rejection
	require.True(t, errors.As(err, &r))
	assert.Equal(t, PositionLimitExceeded, r.Kind)
	assert.Equal(t, "X", r.Symbol)
	assert.InDelta(t, 0.31, r.Current, 1e-12)
	assert.InDelta(t, 0.3, r.Limit, 1e-12)
	assert.Equal(t, "position limit exceeded for X: 31.00% > 30.00%", err.Error())

	// the check itself does not mutate state
	v, ok := m.Position("X")
	assert.True(t, ok)
	assert.Equal(t, 3000.0, v)
}

func TestCheckPositionLimitRejectsNaN(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	assert.ErrorIs(t, m.CheckPositionLimit("X", math.NaN()), ErrPositionLimitExceeded)
}

func TestCheckSingleLoss(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	assert.NoError(t, m.CheckSingleLoss("X", 100))

	err := m.CheckSingleLoss("X", 150)
	assert.ErrorIs(t, err, ErrSingleLossExceeded)
	assert.Contains(t, err.Error(), "1.50% > 1.00%")

	assert.ErrorIs(t, m.CheckSingleLoss("X", math.NaN()), ErrSingleLossExceeded)
}

func TestUpdatesRejectNonFinite(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	assert.ErrorIs(t, m.UpdateDailyPnL(math.NaN()), ErrInvalidAmount)
	assert.ErrorIs(t, m.UpdateDailyPnL(math.Inf(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, m.UpdatePosition("X", -5), ErrInvalidAmount)
	assert.Zero(t, m.DailyPnL())

	_, ok := m.Position("X")
	assert.False(t, ok)
}

func TestRemovePositionAndSnapshot(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	require.NoError(t, m.UpdatePosition("ETHUSDT", 500))
	require.NoError(t, m.UpdatePosition("BTCUSDT", 1500))
	require.NoError(t, m.UpdateDailyPnL(25))

	s := m.Snapshot()
	assert.Equal(t, 10000.0, s.InitialCapital)
	assert.Equal(t, 25.0, s.DailyPnL)
	assert.Equal(t, 2000.0, s.TotalPosition)
	assert.Equal(t, []PositionValue{{"BTCUSDT", 1500}, {"ETHUSDT", 500}}, s.Positions)

	m.RemovePosition("BTCUSDT")
	_, ok := m.Position("BTCUSDT")
	assert.False(t, ok)
	assert.Equal(t, 500.0, m.TotalPositionValue())
}

func TestManagerConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sym := fmt.Sprintf("S%d", i)
			for j := 0; j < 100; j++ {
				_ = m.UpdatePosition(sym, float64(j))
				_ = m.CheckCanTrade(sym)
				_ = m.CheckPositionLimit(sym, 1)
				_ = m.UpdateDailyPnL(0)
			}
		}(i)
	}
	wg.Wait()

	assert.InDelta(t, 8*99, m.TotalPositionValue(), 1e-9)
}

func TestAdjustPosition(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	v, err := m.AdjustPosition("BTCUSDT", 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, v)

	v, err = m.AdjustPosition("BTCUSDT", 500)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, v)

	v, err = m.AdjustPosition("BTCUSDT", -2000)
	require.NoError(t, err)
	assert.Zero(t, v)
	_, ok := m.Position("BTCUSDT")
	assert.False(t, ok, "exposure never goes negative")

	_, err = m.AdjustPosition("BTCUSDT", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, ok = m.Position("BTCUSDT")
	assert.False(t, ok)
}

func TestAdjustPositionIsAtomic(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = m.AdjustPosition("BTCUSDT", 1)
			}
		}()
	}
	wg.Wait()

	v, ok := m.Position("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, 800.0, v)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero single loss", func(c *Config) { c.MaxSingleLoss = 0 }, true},
		{"nan daily loss", func(c *Config) { c.MaxDailyLoss = math.NaN() }, true},
		{"daily loss above one", func(c *Config) { c.MaxDailyLoss = 1.5 }, true},
		{"per symbol above aggregate", func(c *Config) { c.MaxPositionPerSymbol = 0.8 }, true},
		{"leveraged aggregate", func(c *Config) { c.MaxPositionRatio = 2 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DailyLossExceeded", DailyLossExceeded.String())
	assert.Equal(t, "TotalPositionExceeded", TotalPositionExceeded.String())
	assert.Equal(t, "PositionLimitExceeded", PositionLimitExceeded.String())
	assert.Equal(t, "SingleLossExceeded", SingleLossExceeded.String())
	assert.Equal(t, "Unknown", Kind(0).String())
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{DailyLossExceeded, TotalPositionExceeded, PositionLimitExceeded, SingleLossExceeded} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("Unknown")
	assert.Error(t, err)
}
