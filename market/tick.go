package market

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoTick = errors.New("no tick for symbol")

// Tick is one observed trade.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// NewTick validates a trade tick at the feed boundary.
func NewTick(symbol string, price float64, t time.Time) (Tick, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Tick{}, errors.New("tick: empty symbol")
	}
	if !finite(price) || price <= 0 {
		return Tick{}, fmt.Errorf("tick %s: %w: %v", symbol, ErrInvalidPrice, price)
	}
	return Tick{Symbol: symbol, Price: price, Time: t}, nil
}

// BookUpdate sets the aggregate quantity at one price level. A zero
// quantity removes the level.
type BookUpdate struct {
	Symbol   string
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
	UpdateID uint64
}

func NewBookUpdate(symbol string, side Side, price, qty float64, updateID uint64) (BookUpdate, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return BookUpdate{}, errors.New("book update: empty symbol")
	}
	p, err := ParsePrice(price)
	if err != nil {
		return BookUpdate{}, fmt.Errorf("book update %s: %w", symbol, err)
	}
	q, err := ParseQuantity(qty)
	if err != nil {
		return BookUpdate{}, fmt.Errorf("book update %s: %w", symbol, err)
	}
	return BookUpdate{Symbol: symbol, Side: side, Price: p, Quantity: q, UpdateID: updateID}, nil
}

// TickStore keeps the last trade seen per symbol.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]Tick)}
}

func (ts *TickStore) Set(t Tick) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.ticks[t.Symbol] = t
}

func (ts *TickStore) Get(symbol string) (Tick, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.ticks[symbol]
	if !ok {
		return Tick{}, fmt.Errorf("%w: %s", ErrNoTick, symbol)
	}
	return t, nil
}
