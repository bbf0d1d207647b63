package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradecore/engine"
)

// FormatIntentOrg renders an intent as an Org-mode block for pasting into a
// trading journal. Facts go in a PROPERTIES drawer; the review section is
// left for the reader to fill in.
func FormatIntentOrg(in engine.TradeIntent) string {
	status := "APPROVED"
	if !in.Approved {
		status = "REJECTED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s (%s)\n", status, in.Side, in.Symbol, shortID(in.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", in.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", in.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SYMBOL: %s\n", in.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", in.Side)
	fmt.Fprintf(&b, ":SIGNAL: %s\n", in.Signal)
	fmt.Fprintf(&b, ":STRATEGY: %s\n", in.Strategy)
	fmt.Fprintf(&b, ":PRICE: %.8g\n", in.Price)
	fmt.Fprintf(&b, ":NOTIONAL: %.2f\n", in.Notional)
	if in.RejectionReason != "" {
		fmt.Fprintf(&b, ":REJECTION: %s\n", in.RejectionReason)
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatIntentsOrg renders intents separated by blank lines.
func FormatIntentsOrg(intents []engine.TradeIntent) string {
	var b strings.Builder
	for i, in := range intents {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatIntentOrg(in))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
