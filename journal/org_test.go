package journal

import (
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/tradecore/engine"
	"github.com/rustyeddy/tradecore/market"
	"github.com/rustyeddy/tradecore/strategies"
	"github.com/stretchr/testify/assert"
)

func TestFormatIntentOrg(t *testing.T) {
	t.Parallel()

	in := engine.TradeIntent{
		ID:       "01HV0000000000000000000000",
		Time:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Symbol:   "BTCUSDT",
		Side:     market.Buy,
		Signal:   strategies.Long,
		Strategy: "dual_ma",
		Price:    42000.5,
		Notional: 1000,
		Approved: true,
	}
	out := FormatIntentOrg(in)

	assert.True(t, strings.HasPrefix(out, "** APPROVED BUY BTCUSDT (01HV0000)\n"))
	assert.Contains(t, out, ":ID: 01HV0000000000000000000000\n")
	assert.Contains(t, out, ":TIME: 2024-03-01T10:00:00Z\n")
	assert.Contains(t, out, ":PRICE: 42000.5\n")
	assert.Contains(t, out, ":NOTIONAL: 1000.00\n")
	assert.NotContains(t, out, ":REJECTION:")
	assert.Contains(t, out, ":END:\n")
}

func TestFormatIntentsOrgRejected(t *testing.T) {
	t.Parallel()

	rejected := engine.TradeIntent{
		ID:              "short",
		Symbol:          "ETHUSDT",
		Side:            market.Sell,
		Signal:          strategies.Short,
		RejectionReason: "daily loss limit exceeded: -3.50% < -3.00%",
	}
	out := FormatIntentsOrg([]engine.TradeIntent{rejected, rejected})

	assert.Equal(t, 2, strings.Count(out, "** REJECTED SELL ETHUSDT (short)"))
	assert.Contains(t, out, ":REJECTION: daily loss limit exceeded: -3.50% < -3.00%\n")
	assert.Empty(t, FormatIntentsOrg(nil))
}
