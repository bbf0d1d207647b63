package risk

import (
	"fmt"
	"math"
)

// Config holds the risk limits as fractions of initial capital
// (0.01 = 1%). It is fixed for the life of a Manager.
type Config struct {
	MaxSingleLoss        float64 `json:"max_single_loss" yaml:"max_single_loss"`
	MaxDailyLoss         float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxPositionRatio     float64 `json:"max_position_ratio" yaml:"max_position_ratio"`
	MaxPositionPerSymbol float64 `json:"max_position_per_symbol" yaml:"max_position_per_symbol"`
}

func DefaultConfig() Config {
	return Config{
		MaxSingleLoss:        0.01,
		MaxDailyLoss:         0.03,
		MaxPositionRatio:     0.7,
		MaxPositionPerSymbol: 0.3,
	}
}

func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"max_single_loss", c.MaxSingleLoss},
		{"max_daily_loss", c.MaxDailyLoss},
		{"max_position_ratio", c.MaxPositionRatio},
		{"max_position_per_symbol", c.MaxPositionPerSymbol},
	}
	for _, ch := range checks {
		if math.IsNaN(ch.v) || math.IsInf(ch.v, 0) || ch.v <= 0 {
			return fmt.Errorf("%s must be > 0, got %v", ch.name, ch.v)
		}
	}
	if c.MaxSingleLoss > 1 || c.MaxDailyLoss > 1 {
		return fmt.Errorf("loss limits are fractions of capital and must be <= 1")
	}
	if c.MaxPositionPerSymbol > c.MaxPositionRatio {
		return fmt.Errorf("max_position_per_symbol (%v) must be <= max_position_ratio (%v)",
			c.MaxPositionPerSymbol, c.MaxPositionRatio)
	}
	return nil
}
