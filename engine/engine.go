// Package engine is the decision pipeline: it owns per-symbol price history
// and order books, evaluates the strategy, and gates directional signals
// through the risk manager before surfacing trade intents.
//
// All mutation happens on the goroutine running Run. Market data and
// timer events are serialized through one queue, so a tick's history
// update, evaluation and risk check complete before the next event is
// considered.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradecore/market"
	"github.com/rustyeddy/tradecore/metrics"
	"github.com/rustyeddy/tradecore/orderbook"
	"github.com/rustyeddy/tradecore/pkg/id"
	"github.com/rustyeddy/tradecore/risk"
	"github.com/rustyeddy/tradecore/strategies"
)

type eventKind int

const (
	evTick eventKind = iota
	evBook
	evRollover
	evEvaluate
	evFlush
)

type event struct {
	kind eventKind
	tick market.Tick
	book market.BookUpdate
	done chan struct{}
}

type Engine struct {
	cfg      Config
	strategy strategies.Strategy
	risk     *risk.Manager
	sink     Sink
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	events  chan event
	tracked map[string]bool

	mu        sync.RWMutex
	books     *orderbook.Books
	histories map[string]*History
	sinceEval map[string]int
	ticks     *market.TickStore
}

type Option func(*Engine)

// WithMetrics records pipeline counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used to stamp intents for symbols
// with no timestamped trade.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(cfg Config, strat strategies.Strategy, rm *risk.Manager, sink Sink, log zerolog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strat == nil {
		return nil, errors.New("engine: nil strategy")
	}
	if rm == nil {
		return nil, errors.New("engine: nil risk manager")
	}
	if w := strat.Warmup(); w > cfg.HistorySize {
		return nil, fmt.Errorf("engine: history_size %d is shorter than %s warmup %d", cfg.HistorySize, strat.Name(), w)
	}
	if sink == nil {
		sink = MultiSink{}
	}

	e := &Engine{
		cfg:       cfg,
		strategy:  strat,
		risk:      rm,
		sink:      sink,
		log:       log.With().Str("component", "engine").Logger(),
		now:       time.Now,
		events:    make(chan event, cfg.QueueSize),
		tracked:   make(map[string]bool, len(cfg.Symbols)),
		books:     orderbook.NewBooks(cfg.Symbols...),
		histories: make(map[string]*History, len(cfg.Symbols)),
		sinceEval: make(map[string]int, len(cfg.Symbols)),
		ticks:     market.NewTickStore(),
	}
	for _, s := range cfg.Symbols {
		e.tracked[s] = true
		e.histories[s] = NewHistory(cfg.HistorySize)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Config() Config                { return e.cfg }
func (e *Engine) Strategy() strategies.Strategy { return e.strategy }
func (e *Engine) Risk() *risk.Manager           { return e.risk }

// Run consumes queued events and fires periodic evaluation until ctx is
// done. Cancellation drops whatever is still queued.
func (e *Engine) Run(ctx context.Context) error {
	var timer <-chan time.Time
	if e.cfg.EvalInterval > 0 {
		t := time.NewTicker(e.cfg.EvalInterval)
		defer t.Stop()
		timer = t.C
	}

	e.log.Info().
		Strs("symbols", e.cfg.Symbols).
		Str("strategy", e.strategy.Name()).
		Dur("eval_interval", e.cfg.EvalInterval).
		Int("eval_every_ticks", e.cfg.EvalEveryTicks).
		Msg("engine started")

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Int("dropped", len(e.events)).Msg("engine stopped")
			return nil
		case ev := <-e.events:
			e.handle(ctx, ev)
		case <-timer:
			e.EvaluateAll(ctx)
		}
	}
}

func (e *Engine) handle(ctx context.Context, ev event) {
	switch ev.kind {
	case evTick:
		e.ProcessTick(ctx, ev.tick)
	case evBook:
		e.ProcessBookUpdate(ev.book)
	case evRollover:
		e.risk.ResetDailyPnL()
		e.log.Info().Msg("daily rollover")
	case evEvaluate:
		e.EvaluateAll(ctx)
	case evFlush:
	}
	if ev.done != nil {
		close(ev.done)
	}
}

func (e *Engine) enqueue(ctx context.Context, ev event) error {
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await enqueues ev and blocks until Run has handled it.
func (e *Engine) await(ctx context.Context, kind eventKind) error {
	ev := event{kind: kind, done: make(chan struct{})}
	if err := e.enqueue(ctx, ev); err != nil {
		return err
	}
	select {
	case <-ev.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitTick queues a trade tick. It blocks while the queue is full.
func (e *Engine) SubmitTick(ctx context.Context, t market.Tick) error {
	return e.enqueue(ctx, event{kind: evTick, tick: t})
}

func (e *Engine) SubmitBookUpdate(ctx context.Context, u market.BookUpdate) error {
	return e.enqueue(ctx, event{kind: evBook, book: u})
}

// Rollover queues the daily PnL reset behind any pending market data.
func (e *Engine) Rollover(ctx context.Context) error {
	return e.enqueue(ctx, event{kind: evRollover})
}

// Evaluate queues an evaluation of every symbol and waits for it.
func (e *Engine) Evaluate(ctx context.Context) error {
	return e.await(ctx, evEvaluate)
}

// Flush waits until every event queued before it has been handled.
func (e *Engine) Flush(ctx context.Context) error {
	return e.await(ctx, evFlush)
}

// ProcessTick appends the trade price to the symbol's history and runs the
// per-tick evaluation cadence.
func (e *Engine) ProcessTick(ctx context.Context, t market.Tick) {
	if !e.tracked[t.Symbol] {
		e.log.Debug().Str("symbol", t.Symbol).Msg("tick for untracked symbol")
		return
	}
	e.ticks.Set(t)

	e.mu.Lock()
	h := e.histories[t.Symbol]
	h.Push(t.Price)
	n := h.Len()
	e.sinceEval[t.Symbol]++
	due := e.cfg.EvalEveryTicks > 0 && e.sinceEval[t.Symbol] >= e.cfg.EvalEveryTicks
	e.mu.Unlock()

	e.metrics.Tick(t.Symbol)
	e.metrics.SetHistoryLength(t.Symbol, n)

	if due {
		e.EvaluateSymbol(ctx, t.Symbol)
	}
}

// ProcessBookUpdate applies u to the symbol's book. Updates carrying an id
// at or below the book's last id are stale and dropped; it reports whether
// u was applied.
func (e *Engine) ProcessBookUpdate(u market.BookUpdate) bool {
	if !e.tracked[u.Symbol] {
		e.log.Debug().Str("symbol", u.Symbol).Msg("book update for untracked symbol")
		return false
	}

	e.mu.Lock()
	book := e.books.GetOrCreate(u.Symbol)
	if u.UpdateID != 0 {
		if last, ok := book.LastUpdateID(); ok && u.UpdateID <= last {
			e.mu.Unlock()
			e.metrics.StaleUpdate(u.Symbol)
			e.log.Debug().
				Str("symbol", u.Symbol).
				Uint64("update_id", u.UpdateID).
				Uint64("last_update_id", last).
				Msg("stale book update dropped")
			return false
		}
	}
	book.Apply(u)
	e.mu.Unlock()

	e.metrics.BookUpdate(u.Symbol, u.Side.String())
	return true
}

// ResyncBook clears a symbol's book, for use after a gap in update ids.
func (e *Engine) ResyncBook(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ob, ok := e.books.Get(symbol); ok {
		ob.Clear()
	}
}

// EvaluateAll evaluates every tracked symbol in configuration order.
func (e *Engine) EvaluateAll(ctx context.Context) {
	for _, s := range e.cfg.Symbols {
		e.EvaluateSymbol(ctx, s)
	}
}

// EvaluateSymbol runs the strategy over the symbol's history and, on a
// directional signal, passes the intent through the risk gate.
func (e *Engine) EvaluateSymbol(ctx context.Context, symbol string) strategies.Signal {
	start := time.Now()
	defer func() { e.metrics.ObserveEval(time.Since(start)) }()

	e.mu.Lock()
	h, ok := e.histories[symbol]
	if !ok {
		e.mu.Unlock()
		return strategies.None
	}
	e.sinceEval[symbol] = 0
	prices := h.Values()
	e.mu.Unlock()

	if len(prices) < e.strategy.Warmup() {
		e.log.Debug().
			Str("symbol", symbol).
			Int("have", len(prices)).
			Int("need", e.strategy.Warmup()).
			Msg("insufficient price data")
		return strategies.None
	}

	sig := e.strategy.GenerateSignal(prices)
	if !sig.Directional() {
		return sig
	}

	e.metrics.Signal(symbol, sig.String())
	e.log.Info().Str("symbol", symbol).Stringer("signal", sig).Msg("signal generated")

	e.gate(ctx, symbol, sig, prices[len(prices)-1])
	return sig
}

// stamp is the event time of the symbol's last trade, so replayed intents
// carry the time of the tick that triggered them. The clock is used when no
// timestamped trade has been seen.
func (e *Engine) stamp(symbol string) time.Time {
	if t, err := e.ticks.Get(symbol); err == nil && !t.Time.IsZero() {
		return t.Time
	}
	return e.now()
}

func (e *Engine) gate(ctx context.Context, symbol string, sig strategies.Signal, price float64) {
	now := e.stamp(symbol)
	notional := e.orderNotional()
	intent := TradeIntent{
		ID:       id.NewAt(now),
		Time:     now,
		Symbol:   symbol,
		Side:     market.Buy,
		Signal:   sig,
		Strategy: e.strategy.Name(),
		Price:    price,
		Notional: notional,
	}
	if sig == strategies.Short {
		intent.Side = market.Sell
	}

	if err := e.checkRisk(symbol, sig, notional); err != nil {
		intent.RejectionReason = err.Error()
		ev := RiskEvent{Intent: intent}
		if r, ok := risk.AsRejection(err); ok {
			ev.Kind = r.Kind
			ev.Current = r.Current
			ev.Limit = r.Limit
		}
		e.metrics.Rejection(symbol, ev.Kind.String())
		e.log.Warn().
			Str("symbol", symbol).
			Stringer("side", intent.Side).
			Err(err).
			Msg("trade rejected by risk manager")

		if err := e.sink.OnRejection(ctx, ev); err != nil {
			e.metrics.SinkError("rejection")
			e.log.Error().Err(err).Str("intent", intent.ID).Msg("rejection sink failed")
		}
		return
	}

	intent.Approved = true
	if err := e.recordExposure(symbol, sig, notional); err != nil {
		e.log.Error().Err(err).Str("symbol", symbol).Msg("record exposure")
	}
	e.metrics.Intent(symbol, intent.Side.String())
	e.log.Info().
		Str("id", intent.ID).
		Str("symbol", symbol).
		Stringer("side", intent.Side).
		Float64("price", price).
		Float64("notional", intent.Notional).
		Msg("risk check passed")

	if err := e.sink.OnIntent(ctx, intent); err != nil {
		e.metrics.SinkError("intent")
		e.log.Error().Err(err).Str("intent", intent.ID).Msg("intent sink failed")
	}
}

// checkRisk always applies the account-wide limits. Entries that add
// exposure must also pass the single-loss and per-symbol limits.
func (e *Engine) checkRisk(symbol string, sig strategies.Signal, n float64) error {
	if err := e.risk.CheckCanTrade(symbol); err != nil {
		return err
	}
	if sig != strategies.Long {
		return nil
	}
	if err := e.risk.CheckSingleLoss(symbol, risk.PlannedLoss(n, e.cfg.StopLossPct)); err != nil {
		return err
	}
	return e.risk.CheckPositionLimit(symbol, n)
}

// recordExposure books the intended post-trade exposure. A Short reduces
// exposure and never drives it negative.
func (e *Engine) recordExposure(symbol string, sig strategies.Signal, n float64) error {
	var err error
	switch sig {
	case strategies.Long:
		_, err = e.risk.AdjustPosition(symbol, n)
	case strategies.Short:
		_, err = e.risk.AdjustPosition(symbol, -n)
	}
	return err
}

// orderNotional is OrderNotional, or with RiskPerTrade set the notional
// whose planned loss is that share of capital, capped at OrderNotional.
func (e *Engine) orderNotional() float64 {
	n := e.cfg.OrderNotional
	if e.cfg.RiskPerTrade > 0 {
		sized := risk.NotionalForRisk(e.risk.InitialCapital(), e.cfg.RiskPerTrade, e.cfg.StopLossPct)
		if sized > 0 && sized < n {
			n = sized
		}
	}
	return n
}

// Quote is a read-only view of one symbol's market state.
type Quote struct {
	Symbol    string
	Bid       *orderbook.PriceLevel
	Ask       *orderbook.PriceLevel
	Spread    decimal.NullDecimal
	Mid       decimal.NullDecimal
	LastTrade *market.Tick
}

// Quote is safe to call from any goroutine.
func (e *Engine) Quote(symbol string) (Quote, bool) {
	if !e.tracked[symbol] {
		return Quote{}, false
	}
	q := Quote{Symbol: symbol}

	e.mu.RLock()
	if ob, ok := e.books.Get(symbol); ok {
		if l, ok := ob.BestBid(); ok {
			q.Bid = &l
		}
		if l, ok := ob.BestAsk(); ok {
			q.Ask = &l
		}
		if s, ok := ob.Spread(); ok {
			q.Spread = decimal.NullDecimal{Decimal: s, Valid: true}
		}
		if m, ok := ob.MidPrice(); ok {
			q.Mid = decimal.NullDecimal{Decimal: m, Valid: true}
		}
	}
	e.mu.RUnlock()

	if t, err := e.ticks.Get(symbol); err == nil {
		q.LastTrade = &t
	}
	return q, true
}

// BookDepth returns up to depth levels per side, best first.
func (e *Engine) BookDepth(symbol string, depth int) (bids, asks []orderbook.PriceLevel) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ob, ok := e.books.Get(symbol)
	if !ok {
		return nil, nil
	}
	return ob.Bids(depth), ob.Asks(depth)
}

func (e *Engine) HistoryLen(symbol string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if h, ok := e.histories[symbol]; ok {
		return h.Len()
	}
	return 0
}
