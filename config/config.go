package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/journal"
	"github.com/rustyeddy/tradecore/risk"
	"github.com/rustyeddy/tradecore/strategies"
	"gopkg.in/yaml.v3"
)

// Config represents the complete trader configuration
type Config struct {
	General  GeneralConfig     `json:"general" yaml:"general"`
	Trading  TradingConfig     `json:"trading" yaml:"trading"`
	Risk     RiskConfig        `json:"risk" yaml:"risk"`
	Strategy strategies.Config `json:"strategy" yaml:"strategy"`
	Engine   EngineConfig      `json:"engine" yaml:"engine"`
	Journal  journal.Config    `json:"journal" yaml:"journal"`
	Notify   NotifyConfig      `json:"notify" yaml:"notify"`
	Metrics  MetricsConfig     `json:"metrics" yaml:"metrics"`
}

type GeneralConfig struct {
	Environment string `json:"environment" yaml:"environment"`
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// LogFormat is "json" or "console".
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// TradingConfig selects the instruments and the capital they trade against.
type TradingConfig struct {
	Symbols           []string `json:"symbols" yaml:"symbols"`
	InitialCapital    float64  `json:"initial_capital" yaml:"initial_capital"`
	CapitalAllocation float64  `json:"capital_allocation" yaml:"capital_allocation"`
}

// RiskConfig holds the per-trade and per-day limits, as ratios of capital.
type RiskConfig struct {
	MaxPositionPerSymbol float64 `json:"max_position_per_symbol" yaml:"max_position_per_symbol"`
	MaxSingleLoss        float64 `json:"max_single_loss" yaml:"max_single_loss"`
	MaxDailyLoss         float64 `json:"max_daily_loss" yaml:"max_daily_loss"`

	// StopLossMultiplier widens engine.stop_loss_pct when sizing the planned
	// loss of an entry.
	StopLossMultiplier float64 `json:"stop_loss_multiplier" yaml:"stop_loss_multiplier"`
}

type EngineConfig struct {
	HistorySize    int      `json:"history_size" yaml:"history_size"`
	EvalInterval   Duration `json:"eval_interval" yaml:"eval_interval"`
	EvalEveryTicks int      `json:"eval_every_ticks" yaml:"eval_every_ticks"`
	OrderNotional  float64  `json:"order_notional" yaml:"order_notional"`
	RiskPerTrade   float64  `json:"risk_per_trade" yaml:"risk_per_trade"`
	StopLossPct    float64  `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	QueueSize      int      `json:"queue_size" yaml:"queue_size"`
}

// NotifyConfig configures outbound alerts. A sender is enabled when its
// credentials are set.
type NotifyConfig struct {
	TelegramBotToken  string   `json:"telegram_bot_token,omitempty" yaml:"telegram_bot_token,omitempty"`
	TelegramChatID    string   `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id,omitempty"`
	DiscordWebhookURL string   `json:"discord_webhook_url,omitempty" yaml:"discord_webhook_url,omitempty"`
	Events            []string `json:"events,omitempty" yaml:"events,omitempty"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Addr    string `json:"addr" yaml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("60s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", b, err)
	}
	d.Duration = v
	return nil
}

var knownEvents = map[string]bool{
	"info": true, "trade": true, "risk": true, "error": true, "summary": true,
}

// LoadFromFile reads a YAML or JSON configuration file on top of Default(),
// loads envFiles (".env" when none are given; missing files are ignored),
// applies TRADER_* environment overrides and validates the result.
func LoadFromFile(path string, envFiles ...string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}

	_ = godotenvLoad(envFiles...)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate reports the first violated rule, naming the field.
func (c *Config) Validate() error {
	switch strings.ToLower(c.General.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("general.log_format must be 'json' or 'console', got %q", c.General.LogFormat)
	}
	if len(c.Trading.Symbols) == 0 {
		return errors.New("trading.symbols must not be empty")
	}
	if !positive(c.Trading.InitialCapital) {
		return fmt.Errorf("trading.initial_capital must be positive, got %v", c.Trading.InitialCapital)
	}
	if !positive(c.Trading.CapitalAllocation) || c.Trading.CapitalAllocation > 1 {
		return fmt.Errorf("trading.capital_allocation must be in (0,1], got %v", c.Trading.CapitalAllocation)
	}
	if !positive(c.Risk.StopLossMultiplier) {
		return fmt.Errorf("risk.stop_loss_multiplier must be positive, got %v", c.Risk.StopLossMultiplier)
	}
	if err := c.RiskConfig().Validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}
	if _, err := strategies.New(c.Strategy); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	if c.Engine.RiskPerTrade > c.Risk.MaxSingleLoss {
		return fmt.Errorf("engine.risk_per_trade (%v) must not exceed risk.max_single_loss (%v)",
			c.Engine.RiskPerTrade, c.Risk.MaxSingleLoss)
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	if (c.Notify.TelegramBotToken == "") != (c.Notify.TelegramChatID == "") {
		return errors.New("notify.telegram_bot_token and notify.telegram_chat_id must be set together")
	}
	for _, e := range c.Notify.Events {
		if !knownEvents[strings.ToLower(strings.TrimSpace(e))] {
			return fmt.Errorf("notify.events: unknown event %q", e)
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics.enabled is set")
	}
	return nil
}

// RiskConfig maps the risk and trading sections onto the risk manager's limits.
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		MaxSingleLoss:        c.Risk.MaxSingleLoss,
		MaxDailyLoss:         c.Risk.MaxDailyLoss,
		MaxPositionRatio:     c.Trading.CapitalAllocation,
		MaxPositionPerSymbol: c.Risk.MaxPositionPerSymbol,
	}
}

// EngineConfig returns the engine settings. The planned-loss stop is
// engine.stop_loss_pct scaled by risk.stop_loss_multiplier.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Symbols:        append([]string(nil), c.Trading.Symbols...),
		HistorySize:    c.Engine.HistorySize,
		EvalInterval:   c.Engine.EvalInterval.Duration,
		EvalEveryTicks: c.Engine.EvalEveryTicks,
		OrderNotional:  c.Engine.OrderNotional,
		RiskPerTrade:   c.Engine.RiskPerTrade,
		StopLossPct:    c.Engine.StopLossPct * c.Risk.StopLossMultiplier,
		QueueSize:      c.Engine.QueueSize,
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			Environment: "development",
			LogLevel:    "info",
			LogFormat:   "json",
		},
		Trading: TradingConfig{
			Symbols:           []string{"BTCUSDT"},
			InitialCapital:    10000,
			CapitalAllocation: 0.7,
		},
		Risk: RiskConfig{
			MaxPositionPerSymbol: 0.3,
			MaxSingleLoss:        0.01,
			MaxDailyLoss:         0.03,
			StopLossMultiplier:   1.5,
		},
		Strategy: strategies.Config{
			Name:       "dual_ma",
			FastPeriod: 5,
			SlowPeriod: 20,
		},
		Engine: EngineConfig{
			HistorySize:   100,
			EvalInterval:  Duration{60 * time.Second},
			OrderNotional: 1000,
			StopLossPct:   0.01,
			QueueSize:     1024,
		},
		Journal: journal.Config{
			Type: "sqlite",
			Path: "./trader.db",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
