package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRADER_"

// godotenvLoad loads .env style files without overriding variables that are
// already set.
func godotenvLoad(files ...string) error {
	if len(files) == 0 {
		return godotenv.Load()
	}
	var first error
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyEnvOverrides overwrites fields whose TRADER_* variable is set. Values
// that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.General.Environment, "ENVIRONMENT")
	setStr(&cfg.General.LogLevel, "LOG_LEVEL")
	setStr(&cfg.General.LogFormat, "LOG_FORMAT")

	setStringSlice(&cfg.Trading.Symbols, "SYMBOLS")
	setFloat64(&cfg.Trading.InitialCapital, "INITIAL_CAPITAL")
	setFloat64(&cfg.Trading.CapitalAllocation, "CAPITAL_ALLOCATION")

	setFloat64(&cfg.Risk.MaxPositionPerSymbol, "RISK_MAX_POSITION_PER_SYMBOL")
	setFloat64(&cfg.Risk.MaxSingleLoss, "RISK_MAX_SINGLE_LOSS")
	setFloat64(&cfg.Risk.MaxDailyLoss, "RISK_MAX_DAILY_LOSS")
	setFloat64(&cfg.Risk.StopLossMultiplier, "RISK_STOP_LOSS_MULTIPLIER")

	setStr(&cfg.Strategy.Name, "STRATEGY_NAME")
	setInt(&cfg.Strategy.FastPeriod, "STRATEGY_FAST_PERIOD")
	setInt(&cfg.Strategy.SlowPeriod, "STRATEGY_SLOW_PERIOD")

	setInt(&cfg.Engine.HistorySize, "ENGINE_HISTORY_SIZE")
	setDuration(&cfg.Engine.EvalInterval, "ENGINE_EVAL_INTERVAL")
	setInt(&cfg.Engine.EvalEveryTicks, "ENGINE_EVAL_EVERY_TICKS")
	setFloat64(&cfg.Engine.OrderNotional, "ENGINE_ORDER_NOTIONAL")
	setFloat64(&cfg.Engine.RiskPerTrade, "ENGINE_RISK_PER_TRADE")
	setFloat64(&cfg.Engine.StopLossPct, "ENGINE_STOP_LOSS_PCT")
	setInt(&cfg.Engine.QueueSize, "ENGINE_QUEUE_SIZE")

	setStr(&cfg.Journal.Type, "JOURNAL_TYPE")
	setStr(&cfg.Journal.Path, "JOURNAL_PATH")

	setStr(&cfg.Notify.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "NOTIFY_EVENTS")

	setBool(&cfg.Metrics.Enabled, "METRICS_ENABLED")
	setStr(&cfg.Metrics.Addr, "METRICS_ADDR")
}

func lookup(key string) (string, bool) {
	v := os.Getenv(EnvPrefix + key)
	return v, v != ""
}

func setStr(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	parts := strings.Split(v, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		*dst = cleaned
	}
}
