package orderbook

import "sort"

// Books holds one OrderBook per symbol. Like OrderBook it has a single owner.
type Books struct {
	books map[string]*OrderBook
}

func NewBooks(symbols ...string) *Books {
	b := &Books{books: make(map[string]*OrderBook, len(symbols))}
	for _, s := range symbols {
		b.GetOrCreate(s)
	}
	return b
}

func (b *Books) Get(symbol string) (*OrderBook, bool) {
	ob, ok := b.books[symbol]
	return ob, ok
}

func (b *Books) GetOrCreate(symbol string) *OrderBook {
	ob, ok := b.books[symbol]
	if !ok {
		ob = New(symbol)
		b.books[symbol] = ob
	}
	return ob
}

// Symbols returns the tracked symbols in sorted order.
func (b *Books) Symbols() []string {
	out := make([]string, 0, len(b.books))
	for s := range b.books {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
