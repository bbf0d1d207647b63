// Package replay reads recorded market events from CSV and feeds them to
// the engine, for dry runs of the pipeline against captured data.
//
// Two row shapes share one file:
//
//	time,trade,symbol,price
//	time,book,symbol,side,price,qty[,update_id]
//
// time is RFC 3339 or Unix milliseconds. A header row starting with "time"
// is skipped, as are blank lines and lines starting with '#'.
package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradecore/market"
)

type Kind int

const (
	Trade Kind = iota
	Book
)

func (k Kind) String() string {
	if k == Book {
		return "book"
	}
	return "trade"
}

// Event is one parsed row. Exactly one of Tick and Book is set, per Kind.
type Event struct {
	Kind Kind
	Time time.Time
	Tick market.Tick
	Book market.BookUpdate
	Line int
}

type Reader struct {
	closer io.Closer
	r      *csv.Reader
	line   int
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rd := NewReader(f)
	rd.closer = f
	return rd, nil
}

func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	return &Reader{r: cr}
}

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Next returns the next event, or false at end of input.
func (r *Reader) Next() (Event, bool, error) {
	for {
		row, err := r.r.Read()
		if errors.Is(err, io.EOF) {
			return Event{}, false, nil
		}
		if err != nil {
			return Event{}, false, err
		}
		r.line, _ = r.r.FieldPos(0)

		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}

		ev, err := parseRow(row)
		if err != nil {
			return Event{}, false, fmt.Errorf("line %d: %w", r.line, err)
		}
		ev.Line = r.line
		return ev, true, nil
	}
}

func parseRow(row []string) (Event, error) {
	if len(row) < 4 {
		return Event{}, fmt.Errorf("want at least 4 fields, got %d", len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	ts, err := parseTime(row[0])
	if err != nil {
		return Event{}, err
	}

	switch strings.ToLower(row[1]) {
	case "trade", "tick":
		price, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return Event{}, fmt.Errorf("price %q: %w", row[3], err)
		}
		t, err := market.NewTick(row[2], price, ts)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: Trade, Time: ts, Tick: t}, nil

	case "book", "depth":
		if len(row) < 6 {
			return Event{}, fmt.Errorf("book row wants at least 6 fields, got %d", len(row))
		}
		side, err := market.ParseSide(row[3])
		if err != nil {
			return Event{}, err
		}
		price, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return Event{}, fmt.Errorf("price %q: %w", row[4], err)
		}
		qty, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return Event{}, fmt.Errorf("qty %q: %w", row[5], err)
		}
		var id uint64
		if len(row) > 6 && row[6] != "" {
			if id, err = strconv.ParseUint(row[6], 10, 64); err != nil {
				return Event{}, fmt.Errorf("update_id %q: %w", row[6], err)
			}
		}
		u, err := market.NewBookUpdate(row[2], side, price, qty, id)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: Book, Time: ts, Book: u}, nil
	}
	return Event{}, fmt.Errorf("unknown event type %q", row[1])
}

func parseTime(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: want RFC 3339 or unix millis", s)
	}
	return t.UTC(), nil
}
