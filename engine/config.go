package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

type Config struct {
	// Symbols is the set of instruments the engine tracks. Events for any
	// other symbol are dropped.
	Symbols []string

	// HistorySize bounds each symbol's price history (oldest evicted first).
	HistorySize int

	// EvalInterval is the periodic evaluation cadence. Zero disables the
	// timer; evaluation then happens only on the tick cadence or on request.
	EvalInterval time.Duration

	// EvalEveryTicks evaluates a symbol after this many ticks. Zero disables it.
	EvalEveryTicks int

	// OrderNotional is the capital committed per approved intent. With
	// RiskPerTrade set it is the upper bound of the sized order.
	OrderNotional float64

	// RiskPerTrade sizes each order so that its planned loss at StopLossPct
	// is this fraction of initial capital. Zero trades a fixed OrderNotional.
	RiskPerTrade float64

	// StopLossPct is the adverse move used to size the planned loss of a
	// long entry (0.01 = 1%).
	StopLossPct float64

	QueueSize int
}

func DefaultConfig() Config {
	return Config{
		Symbols:       []string{"BTCUSDT"},
		HistorySize:   100,
		EvalInterval:  60 * time.Second,
		OrderNotional: 1000,
		StopLossPct:   0.01,
		QueueSize:     1024,
	}
}

func (c Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("engine: at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		if strings.TrimSpace(s) == "" {
			return errors.New("engine: empty symbol")
		}
		if seen[s] {
			return fmt.Errorf("engine: duplicate symbol %q", s)
		}
		seen[s] = true
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("engine: history_size must be > 0, got %d", c.HistorySize)
	}
	if c.EvalInterval < 0 {
		return fmt.Errorf("engine: eval_interval must be >= 0, got %s", c.EvalInterval)
	}
	if c.EvalEveryTicks < 0 {
		return fmt.Errorf("engine: eval_every_ticks must be >= 0, got %d", c.EvalEveryTicks)
	}
	if math.IsNaN(c.OrderNotional) || math.IsInf(c.OrderNotional, 0) || c.OrderNotional <= 0 {
		return fmt.Errorf("engine: order_notional must be > 0, got %v", c.OrderNotional)
	}
	if math.IsNaN(c.StopLossPct) || c.StopLossPct < 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("engine: stop_loss_pct must be in [0,1), got %v", c.StopLossPct)
	}
	if math.IsNaN(c.RiskPerTrade) || c.RiskPerTrade < 0 || c.RiskPerTrade >= 1 {
		return fmt.Errorf("engine: risk_per_trade must be in [0,1), got %v", c.RiskPerTrade)
	}
	if c.RiskPerTrade > 0 && c.StopLossPct == 0 {
		return errors.New("engine: risk_per_trade needs a non-zero stop_loss_pct")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("engine: queue_size must be >= 0, got %d", c.QueueSize)
	}
	return nil
}
