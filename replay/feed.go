package replay

import (
	"context"

	"github.com/rustyeddy/tradecore/market"
)

// Target receives replayed events; *engine.Engine satisfies it.
type Target interface {
	SubmitTick(ctx context.Context, t market.Tick) error
	SubmitBookUpdate(ctx context.Context, u market.BookUpdate) error
}

// Roller is implemented by targets that accept a daily rollover.
type Roller interface {
	Rollover(ctx context.Context) error
}

// Stats counts what Feed delivered.
type Stats struct {
	Trades    int
	Books     int
	Rollovers int
}

// Feed submits every event in path to target in file order. When target
// is a Roller, a rollover is submitted each time the UTC date of the event
// stream advances.
func Feed(ctx context.Context, path string, target Target) (Stats, error) {
	r, err := Open(path)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()
	return FeedFrom(ctx, r, target)
}

func FeedFrom(ctx context.Context, r *Reader, target Target) (Stats, error) {
	var (
		st      Stats
		lastDay string
	)
	roller, _ := target.(Roller)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		ev, ok, err := r.Next()
		if err != nil {
			return st, err
		}
		if !ok {
			return st, nil
		}

		day := ev.Time.Format("2006-01-02")
		if roller != nil && lastDay != "" && day > lastDay {
			if err := roller.Rollover(ctx); err != nil {
				return st, err
			}
			st.Rollovers++
		}
		if day > lastDay {
			lastDay = day
		}

		switch ev.Kind {
		case Trade:
			if err := target.SubmitTick(ctx, ev.Tick); err != nil {
				return st, err
			}
			st.Trades++
		case Book:
			if err := target.SubmitBookUpdate(ctx, ev.Book); err != nil {
				return st, err
			}
			st.Books++
		}
	}
}
