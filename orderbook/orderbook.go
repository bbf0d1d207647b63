// Package orderbook keeps a per-symbol ledger of bid and ask price levels.
//
// Each side is a B-tree keyed by price, so upserts, deletes and best-price
// lookups are O(log n). Prices are decimals: they compare exactly, which is
// what a sorted-map key needs and what float comparison cannot guarantee.
package orderbook

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradecore/market"
)

const degree = 16

var two = decimal.NewFromInt(2)

// PriceLevel is an immutable (price, aggregate quantity) pair. Queries return
// copies; nothing handed out aliases the book's storage.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

func byPrice(a, b PriceLevel) bool {
	return a.Price.LessThan(b.Price)
}

// OrderBook is not safe for concurrent use; its owner serializes access.
type OrderBook struct {
	symbol string
	bids   *btree.BTreeG[PriceLevel]
	asks   *btree.BTreeG[PriceLevel]

	lastUpdateID uint64
	hasUpdateID  bool
}

func New(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   btree.NewG(degree, byPrice),
		asks:   btree.NewG(degree, byPrice),
	}
}

func (ob *OrderBook) Symbol() string { return ob.symbol }

// UpdateBid upserts a bid level. A zero (or negative) quantity removes it,
// so the book never stores an empty level.
func (ob *OrderBook) UpdateBid(price, qty decimal.Decimal) {
	upsert(ob.bids, price, qty)
}

// UpdateAsk is UpdateBid for the ask side.
func (ob *OrderBook) UpdateAsk(price, qty decimal.Decimal) {
	upsert(ob.asks, price, qty)
}

func upsert(side *btree.BTreeG[PriceLevel], price, qty decimal.Decimal) {
	if !qty.IsPositive() {
		side.Delete(PriceLevel{Price: price})
		return
	}
	side.ReplaceOrInsert(PriceLevel{Price: price, Quantity: qty})
}

// Apply routes a feed update to its side and records its update id when
// one is present. Staleness checks are the caller's job.
func (ob *OrderBook) Apply(u market.BookUpdate) {
	switch u.Side {
	case market.Bid:
		ob.UpdateBid(u.Price, u.Quantity)
	case market.Ask:
		ob.UpdateAsk(u.Price, u.Quantity)
	default:
		return
	}
	if u.UpdateID != 0 {
		ob.SetLastUpdateID(u.UpdateID)
	}
}

// BestBid returns the highest bid.
func (ob *OrderBook) BestBid() (PriceLevel, bool) {
	return ob.bids.Max()
}

// BestAsk returns the lowest ask.
func (ob *OrderBook) BestAsk() (PriceLevel, bool) {
	return ob.asks.Min()
}

// Spread is best ask minus best bid; defined only when both sides have a level.
func (ob *OrderBook) Spread() (decimal.Decimal, bool) {
	bid, okb := ob.BestBid()
	ask, oka := ob.BestAsk()
	if !okb || !oka {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}

func (ob *OrderBook) MidPrice() (decimal.Decimal, bool) {
	bid, okb := ob.BestBid()
	ask, oka := ob.BestAsk()
	if !okb || !oka {
		return decimal.Zero, false
	}
	return ask.Price.Add(bid.Price).Div(two), true
}

// Bids returns up to depth levels, highest price first.
func (ob *OrderBook) Bids(depth int) []PriceLevel {
	if depth <= 0 {
		return []PriceLevel{}
	}
	out := make([]PriceLevel, 0, min(depth, ob.bids.Len()))
	ob.bids.Descend(func(l PriceLevel) bool {
		out = append(out, l)
		return len(out) < depth
	})
	return out
}

// Asks returns up to depth levels, lowest price first.
func (ob *OrderBook) Asks(depth int) []PriceLevel {
	if depth <= 0 {
		return []PriceLevel{}
	}
	out := make([]PriceLevel, 0, min(depth, ob.asks.Len()))
	ob.asks.Ascend(func(l PriceLevel) bool {
		out = append(out, l)
		return len(out) < depth
	})
	return out
}

func (ob *OrderBook) TotalBidQuantity() decimal.Decimal { return total(ob.bids) }
func (ob *OrderBook) TotalAskQuantity() decimal.Decimal { return total(ob.asks) }

func total(side *btree.BTreeG[PriceLevel]) decimal.Decimal {
	sum := decimal.Zero
	side.Ascend(func(l PriceLevel) bool {
		sum = sum.Add(l.Quantity)
		return true
	})
	return sum
}

// Depth reports the number of levels on each side.
func (ob *OrderBook) Depth() (bids, asks int) {
	return ob.bids.Len(), ob.asks.Len()
}

func (ob *OrderBook) SetLastUpdateID(id uint64) {
	ob.lastUpdateID = id
	ob.hasUpdateID = true
}

func (ob *OrderBook) LastUpdateID() (uint64, bool) {
	return ob.lastUpdateID, ob.hasUpdateID
}

// Clear empties both sides and forgets the update id. Used on resync; the
// book keeps its symbol and stays usable.
func (ob *OrderBook) Clear() {
	ob.bids.Clear(false)
	ob.asks.Clear(false)
	ob.lastUpdateID = 0
	ob.hasUpdateID = false
}

// Imbalance is (bidQty-askQty)/(bidQty+askQty) over the top depth levels of
// each side, in [-1, 1]. Positive means more resting size on the bid.
func (ob *OrderBook) Imbalance(depth int) (float64, bool) {
	var bidQty, askQty decimal.Decimal
	for _, l := range ob.Bids(depth) {
		bidQty = bidQty.Add(l.Quantity)
	}
	for _, l := range ob.Asks(depth) {
		askQty = askQty.Add(l.Quantity)
	}
	den := bidQty.Add(askQty)
	if den.IsZero() {
		return 0, false
	}
	imb, _ := bidQty.Sub(askQty).Div(den).Float64()
	return imb, true
}
