package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/market"
	"github.com/rustyeddy/tradecore/risk"
	"github.com/rustyeddy/tradecore/strategies"
)

var ErrNotFound = errors.New("journal: not found")

const selectIntent = `
	SELECT id, time, symbol, side, signal, strategy, price, notional, approved, rejection_reason
	FROM intents`

type scanner interface {
	Scan(dest ...any) error
}

func scanIntent(s scanner) (engine.TradeIntent, error) {
	var (
		in           engine.TradeIntent
		side, signal string
	)
	err := s.Scan(&in.ID, &in.Time, &in.Symbol, &side, &signal,
		&in.Strategy, &in.Price, &in.Notional, &in.Approved, &in.RejectionReason)
	if err != nil {
		return in, err
	}
	if in.Side, err = market.ParseOrderSide(side); err != nil {
		return in, err
	}
	if in.Signal, err = strategies.ParseSignal(signal); err != nil {
		return in, err
	}
	return in, nil
}

// GetIntent returns one intent by id.
func (j *SQLite) GetIntent(ctx context.Context, id string) (engine.TradeIntent, error) {
	in, err := scanIntent(j.db.QueryRowContext(ctx, selectIntent+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return in, fmt.Errorf("intent %q: %w", id, ErrNotFound)
	}
	return in, err
}

// ListIntents returns the newest intents first. An empty symbol matches
// every symbol; limit <= 0 means no limit.
func (j *SQLite) ListIntents(ctx context.Context, symbol string, limit int) ([]engine.TradeIntent, error) {
	q := selectIntent + ` WHERE (? = '' OR symbol = ?) ORDER BY time DESC, id DESC LIMIT ?`
	rows, err := j.db.QueryContext(ctx, q, symbol, symbol, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []engine.TradeIntent{}
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// ListRejections returns the newest rejections first, each with its intent.
func (j *SQLite) ListRejections(ctx context.Context, limit int) ([]engine.RiskEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT i.id, i.time, i.symbol, i.side, i.signal, i.strategy, i.price, i.notional, i.approved, i.rejection_reason,
		       r.kind, r.current_ratio, r.limit_ratio
		FROM rejections r JOIN intents i ON i.id = r.intent_id
		ORDER BY r.time DESC, r.intent_id DESC
		LIMIT ?`, sqlLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []engine.RiskEvent{}
	for rows.Next() {
		var (
			ev           engine.RiskEvent
			side, signal string
			kind         string
		)
		in := &ev.Intent
		err := rows.Scan(&in.ID, &in.Time, &in.Symbol, &side, &signal,
			&in.Strategy, &in.Price, &in.Notional, &in.Approved, &in.RejectionReason,
			&kind, &ev.Current, &ev.Limit)
		if err != nil {
			return nil, err
		}
		if in.Side, err = market.ParseOrderSide(side); err != nil {
			return nil, err
		}
		if in.Signal, err = strategies.ParseSignal(signal); err != nil {
			return nil, err
		}
		if ev.Kind, err = risk.ParseKind(kind); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountIntents reports approved and rejected intent totals.
func (j *SQLite) CountIntents(ctx context.Context) (approved, rejected int, err error) {
	err = j.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(approved), 0), COALESCE(SUM(1 - approved), 0) FROM intents`,
	).Scan(&approved, &rejected)
	return approved, rejected, err
}

// sqlLimit maps "no limit" to SQLite's -1.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
