// Package journal persists the engine's trade intents and risk rejections.
package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/tradecore/engine"
)

// Journal is an engine.Sink backed by storage.
type Journal interface {
	engine.Sink
	Close() error
}

type Config struct {
	// Type is "sqlite", "csv" or "none".
	Type string `json:"type" yaml:"type"`

	// Path is the SQLite database file, or the directory for CSV files.
	Path string `json:"path" yaml:"path"`
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Type) {
	case "", "none":
		return nil
	case "sqlite", "csv":
		if strings.TrimSpace(c.Path) == "" {
			return fmt.Errorf("journal.path is required for type %q", c.Type)
		}
		return nil
	}
	return fmt.Errorf("journal.type %q is not one of sqlite, csv, none", c.Type)
}

// Open builds the journal selected by cfg.Type.
func Open(cfg Config) (Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Type) {
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "csv":
		return NewCSV(filepath.Join(cfg.Path, "intents.csv"), filepath.Join(cfg.Path, "rejections.csv"))
	default:
		return Nop{}, nil
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) OnIntent(context.Context, engine.TradeIntent) error  { return nil }
func (Nop) OnRejection(context.Context, engine.RiskEvent) error { return nil }
func (Nop) Close() error                                        { return nil }
