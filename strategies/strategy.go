// Package strategies turns a window of recent prices into a trading Signal.
package strategies

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidWindows  = errors.New("strategy requires 0 < fast period < slow period")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

type Signal int

const (
	None Signal = iota
	Long
	Short
	CloseLong
	CloseShort
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case CloseLong:
		return "CLOSE_LONG"
	case CloseShort:
		return "CLOSE_SHORT"
	default:
		return "NONE"
	}
}

// ParseSignal is the inverse of String.
func ParseSignal(s string) (Signal, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NONE", "":
		return None, nil
	case "LONG":
		return Long, nil
	case "SHORT":
		return Short, nil
	case "CLOSE_LONG":
		return CloseLong, nil
	case "CLOSE_SHORT":
		return CloseShort, nil
	}
	return None, fmt.Errorf("unknown signal %q", s)
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signal) UnmarshalText(b []byte) error {
	v, err := ParseSignal(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Directional reports whether s opens a position.
func (s Signal) Directional() bool {
	return s == Long || s == Short
}

// Strategy is a pure function of a price history, oldest price first.
// Implementations keep no state between calls.
type Strategy interface {
	Name() string

	// Warmup is the minimum history length before a signal is possible.
	Warmup() int

	GenerateSignal(prices []float64) Signal
}

type Config struct {
	Name       string `json:"name" yaml:"name"`
	FastPeriod int    `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int    `json:"slow_period" yaml:"slow_period"`
}

var constructors = map[string]func(Config) (Strategy, error){
	"dual_ma": func(c Config) (Strategy, error) {
		return NewDualMA(c.FastPeriod, c.SlowPeriod)
	},
	"ema_cross": func(c Config) (Strategy, error) {
		return NewEMACross(c.FastPeriod, c.SlowPeriod)
	},
	"noop": func(Config) (Strategy, error) {
		return Noop{}, nil
	},
}

// New builds the strategy named in cfg. Names are case-insensitive and
// accept '-' for '_'.
func New(cfg Config) (Strategy, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(cfg.Name)), "-", "_")
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownStrategy, cfg.Name, strings.Join(Names(), ", "))
	}
	return ctor(cfg)
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	out := make([]string, 0, len(constructors))
	for n := range constructors {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func checkWindows(fast, slow int) error {
	if fast <= 0 || slow <= 0 || fast >= slow {
		return fmt.Errorf("%w, got fast=%d slow=%d", ErrInvalidWindows, fast, slow)
	}
	return nil
}
