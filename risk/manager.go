// Package risk gates trade intents against daily-loss, per-symbol and
// aggregate exposure limits.
package risk

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Manager tracks daily PnL and per-symbol notional exposure. All amounts
// share the currency of the initial capital.
//
// Each check holds the lock for its whole read-then-decide sequence, so a
// decision always sees a consistent snapshot of every position.
type Manager struct {
	cfg     Config
	capital float64
	log     zerolog.Logger

	mu        sync.Mutex
	dailyPnL  float64
	positions map[string]float64
}

func NewManager(cfg Config, initialCapital float64, log zerolog.Logger) (*Manager, error) {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidCapital, initialCapital)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("risk config: %w", err)
	}
	return &Manager{
		cfg:       cfg,
		capital:   initialCapital,
		log:       log.With().Str("component", "risk").Logger(),
		positions: make(map[string]float64),
	}, nil
}

func (m *Manager) Config() Config          { return m.cfg }
func (m *Manager) InitialCapital() float64 { return m.capital }

// CheckCanTrade applies the account-wide limits in order: daily loss, then
// aggregate exposure. The first violation is returned.
func (m *Manager) CheckCanTrade(symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	daily := m.dailyPnL / m.capital
	if !(daily >= -m.cfg.MaxDailyLoss) {
		return m.reject(&Rejection{Kind: DailyLossExceeded, Symbol: symbol, Current: daily, Limit: m.cfg.MaxDailyLoss})
	}

	total := m.totalLocked() / m.capital
	if !(total <= m.cfg.MaxPositionRatio) {
		return m.reject(&Rejection{Kind: TotalPositionExceeded, Symbol: symbol, Current: total, Limit: m.cfg.MaxPositionRatio})
	}
	return nil
}

// CheckPositionLimit rejects when symbol's exposure plus additional would
// exceed the per-symbol limit. It is independent of CheckCanTrade.
func (m *Manager) CheckPositionLimit(symbol string, additional float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := (m.positions[symbol] + additional) / m.capital
	if !(ratio <= m.cfg.MaxPositionPerSymbol) {
		return m.reject(&Rejection{Kind: PositionLimitExceeded, Symbol: symbol, Current: ratio, Limit: m.cfg.MaxPositionPerSymbol})
	}
	return nil
}

// CheckSingleLoss rejects a trade whose planned loss is too large a share
// of initial capital.
func (m *Manager) CheckSingleLoss(symbol string, potentialLoss float64) error {
	ratio := RiskPct(math.Abs(potentialLoss), m.capital)
	if !(ratio <= m.cfg.MaxSingleLoss) {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.reject(&Rejection{Kind: SingleLossExceeded, Symbol: symbol, Current: ratio, Limit: m.cfg.MaxSingleLoss})
	}
	return nil
}

func (m *Manager) reject(r *Rejection) error {
	m.log.Warn().
		Str("kind", r.Kind.String()).
		Str("symbol", r.Symbol).
		Float64("current_pct", 100*r.Current).
		Float64("limit_pct", 100*r.Limit).
		Msg("risk check rejected")
	return r
}

// UpdateDailyPnL accumulates delta into the day's realized PnL.
func (m *Manager) UpdateDailyPnL(delta float64) error {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("daily pnl delta: %w, got %v", ErrInvalidAmount, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dailyPnL += delta
	m.log.Info().
		Float64("daily_pnl", m.dailyPnL).
		Float64("daily_pnl_pct", 100*m.dailyPnL/m.capital).
		Msg("daily pnl updated")
	return nil
}

// UpdatePosition records the notional exposure held in symbol, replacing
// any previous value.
func (m *Manager) UpdatePosition(symbol string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("position %s: %w, got %v", symbol, ErrInvalidAmount, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.positions[symbol] = value
	m.log.Info().Str("symbol", symbol).Float64("value", value).Msg("position updated")
	return nil
}

// AdjustPosition adds delta to the exposure held in symbol and returns the
// new value. A result at or below zero removes the position.
func (m *Manager) AdjustPosition(symbol string, delta float64) (float64, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("position %s: %w, got delta %v", symbol, ErrInvalidAmount, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.positions[symbol] + delta
	if next <= 0 {
		delete(m.positions, symbol)
		m.log.Info().Str("symbol", symbol).Float64("delta", delta).Msg("position closed")
		return 0, nil
	}
	m.positions[symbol] = next
	m.log.Info().Str("symbol", symbol).Float64("delta", delta).Float64("value", next).Msg("position adjusted")
	return next, nil
}

func (m *Manager) RemovePosition(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.positions, symbol)
	m.log.Info().Str("symbol", symbol).Msg("position removed")
}

// ResetDailyPnL is called by the daily rollover, never by the manager.
func (m *Manager) ResetDailyPnL() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Info().Float64("previous", m.dailyPnL).Msg("resetting daily pnl")
	m.dailyPnL = 0
}

func (m *Manager) DailyPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dailyPnL
}

func (m *Manager) Position(symbol string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.positions[symbol]
	return v, ok
}

func (m *Manager) TotalPositionValue() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalLocked()
}

func (m *Manager) totalLocked() float64 {
	var sum float64
	for _, v := range m.positions {
		sum += v
	}
	return sum
}

type PositionValue struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// Snapshot is a point-in-time copy of the manager's state.
type Snapshot struct {
	InitialCapital float64         `json:"initial_capital"`
	DailyPnL       float64         `json:"daily_pnl"`
	TotalPosition  float64         `json:"total_position"`
	Positions      []PositionValue `json:"positions"`
}

// Snapshot returns the current state with positions sorted by symbol.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		InitialCapital: m.capital,
		DailyPnL:       m.dailyPnL,
		TotalPosition:  m.totalLocked(),
		Positions:      make([]PositionValue, 0, len(m.positions)),
	}
	for sym, v := range m.positions {
		s.Positions = append(s.Positions, PositionValue{Symbol: sym, Value: v})
	}
	sort.Slice(s.Positions, func(i, j int) bool { return s.Positions[i].Symbol < s.Positions[j].Symbol })
	return s
}
