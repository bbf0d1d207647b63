package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tradecore/engine"
)

type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

const insertIntent = `
	INSERT INTO intents
	(id, time, symbol, side, signal, strategy, price, notional, approved, rejection_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func intentArgs(in engine.TradeIntent) []any {
	return []any{
		in.ID, in.Time.UTC(), in.Symbol, in.Side.String(), in.Signal.String(),
		in.Strategy, in.Price, in.Notional, in.Approved, in.RejectionReason,
	}
}

func (j *SQLite) OnIntent(ctx context.Context, in engine.TradeIntent) error {
	if _, err := j.db.ExecContext(ctx, insertIntent, intentArgs(in)...); err != nil {
		return fmt.Errorf("record intent %s: %w", in.ID, err)
	}
	return nil
}

// OnRejection stores the rejected intent and its rejection in one transaction.
func (j *SQLite) OnRejection(ctx context.Context, ev engine.RiskEvent) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertIntent, intentArgs(ev.Intent)...); err != nil {
		return fmt.Errorf("record rejected intent %s: %w", ev.Intent.ID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rejections
		(intent_id, time, symbol, kind, current_ratio, limit_ratio, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Intent.ID, ev.Intent.Time.UTC(), ev.Intent.Symbol, ev.Kind.String(),
		ev.Current, ev.Limit, ev.Intent.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("record rejection %s: %w", ev.Intent.ID, err)
	}
	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
