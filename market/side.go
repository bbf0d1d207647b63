package market

import (
	"fmt"
	"strings"
)

// Side is the book side a level update applies to.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// ParseSide accepts the spellings exchanges use for book sides.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "bids", "buy", "b":
		return Bid, nil
	case "ask", "asks", "sell", "a":
		return Ask, nil
	}
	return 0, fmt.Errorf("unknown book side %q", s)
}

// OrderSide is the direction of a trade intent.
type OrderSide int

const (
	Buy OrderSide = iota
	Sell
)

func (s OrderSide) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("OrderSide(%d)", int(s))
	}
}

func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	}
	return 0, fmt.Errorf("unknown order side %q", s)
}

func (s OrderSide) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderSide) UnmarshalText(b []byte) error {
	v, err := ParseOrderSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
