package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/tradecore/market"
	"github.com/rustyeddy/tradecore/risk"
	"github.com/rustyeddy/tradecore/strategies"
)

// TradeIntent is a risk-gated directional proposal. It is not an order.
type TradeIntent struct {
	ID              string            `json:"id"`
	Time            time.Time         `json:"time"`
	Symbol          string            `json:"symbol"`
	Side            market.OrderSide  `json:"side"`
	Signal          strategies.Signal `json:"signal"`
	Strategy        string            `json:"strategy"`
	Price           float64           `json:"price"`
	Notional        float64           `json:"notional"`
	Approved        bool              `json:"approved"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
}

// RiskEvent reports a rejected intent. Current and Limit are ratios of
// initial capital.
type RiskEvent struct {
	Intent  TradeIntent `json:"intent"`
	Kind    risk.Kind   `json:"kind"`
	Current float64     `json:"current"`
	Limit   float64     `json:"limit"`
}

// Sink receives the engine's outputs. Calls come from the engine goroutine,
// one at a time; a slow sink delays the next event.
type Sink interface {
	OnIntent(ctx context.Context, intent TradeIntent) error
	OnRejection(ctx context.Context, ev RiskEvent) error
}

// MultiSink fans out to every sink and joins their errors.
type MultiSink []Sink

func (ms MultiSink) OnIntent(ctx context.Context, intent TradeIntent) error {
	var errs []error
	for _, s := range ms {
		if err := s.OnIntent(ctx, intent); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms MultiSink) OnRejection(ctx context.Context, ev RiskEvent) error {
	var errs []error
	for _, s := range ms {
		if err := s.OnRejection(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
