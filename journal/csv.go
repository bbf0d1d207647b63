package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rustyeddy/tradecore/engine"
)

var (
	intentHeader    = []string{"id", "time", "symbol", "side", "signal", "strategy", "price", "notional", "approved", "rejection_reason"}
	rejectionHeader = []string{"intent_id", "time", "symbol", "side", "kind", "current_pct", "limit_pct", "reason"}
)

// CSV appends intents and rejections to two files. Existing files are
// extended, and a header is written only to empty files.
type CSV struct {
	mu         sync.Mutex
	intents    *csv.Writer
	rejections *csv.Writer
	inf, rjf   *os.File
}

var _ Journal = (*CSV)(nil)

func NewCSV(intentsPath, rejectionsPath string) (*CSV, error) {
	inf, iw, err := openAppend(intentsPath, intentHeader)
	if err != nil {
		return nil, err
	}
	rjf, rw, err := openAppend(rejectionsPath, rejectionHeader)
	if err != nil {
		_ = inf.Close()
		return nil, err
	}
	return &CSV{intents: iw, rejections: rw, inf: inf, rjf: rjf}, nil
}

func openAppend(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := write(w, header); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) OnIntent(_ context.Context, in engine.TradeIntent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return write(j.intents, intentRecord(in))
}

func (j *CSV) OnRejection(_ context.Context, ev engine.RiskEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := write(j.intents, intentRecord(ev.Intent)); err != nil {
		return err
	}
	return write(j.rejections, []string{
		ev.Intent.ID,
		ev.Intent.Time.UTC().Format(time.RFC3339Nano),
		ev.Intent.Symbol,
		ev.Intent.Side.String(),
		ev.Kind.String(),
		pct(ev.Current),
		pct(ev.Limit),
		ev.Intent.RejectionReason,
	})
}

func intentRecord(in engine.TradeIntent) []string {
	return []string{
		in.ID,
		in.Time.UTC().Format(time.RFC3339Nano),
		in.Symbol,
		in.Side.String(),
		in.Signal.String(),
		in.Strategy,
		f(in.Price),
		f(in.Notional),
		strconv.FormatBool(in.Approved),
		in.RejectionReason,
	}
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.intents.Flush()
	j.rejections.Flush()
	ierr := j.inf.Close()
	rerr := j.rjf.Close()
	if ierr != nil {
		return ierr
	}
	return rerr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func pct(ratio float64) string {
	return strconv.FormatFloat(100*ratio, 'f', 2, 64)
}
