package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/risk"
)

type Level int

const (
	Info Level = iota
	Warning
	Critical
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "INFO"
	}
}

// Alerter renders engine outputs as chat alerts. It implements engine.Sink
// and counts approved intents for the daily summary.
type Alerter struct {
	n   *Notifier
	log zerolog.Logger
	now func() time.Time

	mu     sync.Mutex
	trades int
}

var _ engine.Sink = (*Alerter)(nil)

func NewAlerter(n *Notifier, log zerolog.Logger) *Alerter {
	a := &Alerter{
		n:   n,
		log: log.With().Str("component", "alerter").Logger(),
		now: time.Now,
	}
	if !n.Enabled() {
		a.log.Warn().Msg("no notification senders configured, alerts disabled")
	}
	return a
}

func (a *Alerter) send(ctx context.Context, event string, level Level, title, body string) error {
	if !a.n.Enabled() {
		return nil
	}
	ts := a.now().UTC().Format("2006-01-02 15:04:05 UTC")
	msg := fmt.Sprintf("%s\n\n_%s_", body, ts)
	return a.n.Notify(ctx, event, fmt.Sprintf("[%s] %s", level, title), msg)
}

// OnIntent sends a trade alert for an approved intent.
func (a *Alerter) OnIntent(ctx context.Context, in engine.TradeIntent) error {
	if !in.Approved {
		return nil
	}
	a.mu.Lock()
	a.trades++
	a.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: `%s`\n", in.Symbol)
	fmt.Fprintf(&b, "Side: *%s*\n", in.Side)
	fmt.Fprintf(&b, "Price: `%.2f`\n", in.Price)
	fmt.Fprintf(&b, "Notional: `%.2f`\n", in.Notional)
	fmt.Fprintf(&b, "Strategy: %s", escapeMarkdown(in.Strategy))
	return a.send(ctx, EventTrade, Info, "Trade intent", b.String())
}

// OnRejection sends a risk alert carrying the rejection reason.
func (a *Alerter) OnRejection(ctx context.Context, ev engine.RiskEvent) error {
	body := fmt.Sprintf("Trade rejected: %s\nSymbol: `%s`\nSide: *%s*\nCheck: %s",
		escapeMarkdown(ev.Intent.RejectionReason), ev.Intent.Symbol, ev.Intent.Side, ev.Kind)
	return a.send(ctx, EventRisk, Warning, "Risk rejection", body)
}

// Startup announces that the engine is running.
func (a *Alerter) Startup(ctx context.Context, symbols []string, strategy string) error {
	body := fmt.Sprintf("Trading engine started\nSymbols: %s\nStrategy: %s",
		escapeMarkdown(strings.Join(symbols, ", ")), escapeMarkdown(strategy))
	return a.send(ctx, EventInfo, Info, "Engine started", body)
}

// Error sends a critical alert.
func (a *Alerter) Error(ctx context.Context, err error) error {
	return a.send(ctx, EventError, Critical, "Error", escapeMarkdown(err.Error()))
}

// DailySummary reports the day's PnL and intent count, then resets the
// count for the next day.
func (a *Alerter) DailySummary(ctx context.Context, s risk.Snapshot) error {
	a.mu.Lock()
	trades := a.trades
	a.trades = 0
	a.mu.Unlock()

	trend := "up"
	if s.DailyPnL <= 0 {
		trend = "down"
	}
	var pct float64
	if s.InitialCapital > 0 {
		pct = 100 * s.DailyPnL / s.InitialCapital
	}
	body := fmt.Sprintf("PnL: `%.2f` (%.2f%%, %s)\nTrades: `%d`\nOpen exposure: `%.2f`\nDate: %s",
		s.DailyPnL, pct, trend, trades, s.TotalPosition, a.now().UTC().Format("2006-01-02"))
	return a.send(ctx, EventSummary, Info, "Daily summary", body)
}

// Trades is the number of approved intents since the last summary.
func (a *Alerter) Trades() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trades
}
