package risk

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCapital = errors.New("initial capital must be a positive finite number")
	ErrInvalidAmount  = errors.New("amount must be a finite number")

	ErrDailyLossExceeded     = errors.New("daily loss limit exceeded")
	ErrTotalPositionExceeded = errors.New("total position ratio exceeded")
	ErrPositionLimitExceeded = errors.New("position limit exceeded")
	ErrSingleLossExceeded    = errors.New("single trade loss would exceed limit")
)

// Kind identifies which limit a Rejection tripped.
type Kind int

const (
	DailyLossExceeded Kind = iota + 1
	TotalPositionExceeded
	PositionLimitExceeded
	SingleLossExceeded
)

func (k Kind) String() string {
	switch k {
	case DailyLossExceeded:
		return "DailyLossExceeded"
	case TotalPositionExceeded:
		return "TotalPositionExceeded"
	case PositionLimitExceeded:
		return "PositionLimitExceeded"
	case SingleLossExceeded:
		return "SingleLossExceeded"
	default:
		return "Unknown"
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	for k := DailyLossExceeded; k <= SingleLossExceeded; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown risk kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (k Kind) sentinel() error {
	switch k {
	case DailyLossExceeded:
		return ErrDailyLossExceeded
	case TotalPositionExceeded:
		return ErrTotalPositionExceeded
	case PositionLimitExceeded:
		return ErrPositionLimitExceeded
	case SingleLossExceeded:
		return ErrSingleLossExceeded
	default:
		return nil
	}
}

// Rejection is returned by the Manager checks when a limit is violated.
// Current and Limit are ratios of initial capital; Error renders them as
// percentages.
type Rejection struct {
	Kind    Kind
	Symbol  string
	Current float64
	Limit   float64
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case DailyLossExceeded:
		return fmt.Sprintf("daily loss limit exceeded: %.2f%% < -%.2f%%", 100*r.Current, 100*r.Limit)
	case PositionLimitExceeded:
		return fmt.Sprintf("position limit exceeded for %s: %.2f%% > %.2f%%", r.Symbol, 100*r.Current, 100*r.Limit)
	case TotalPositionExceeded:
		return fmt.Sprintf("total position ratio exceeded: %.2f%% > %.2f%%", 100*r.Current, 100*r.Limit)
	case SingleLossExceeded:
		return fmt.Sprintf("single trade loss would exceed limit for %s: %.2f%% > %.2f%%", r.Symbol, 100*r.Current, 100*r.Limit)
	default:
		return fmt.Sprintf("risk rejection %d", int(r.Kind))
	}
}

func (r *Rejection) Unwrap() error { return r.Kind.sentinel() }

// AsRejection extracts a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
