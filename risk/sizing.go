package risk

import "math"

// PlannedLoss is the capital lost on a position of the given notional if
// price moves stopPct against it.
func PlannedLoss(notional, stopPct float64) float64 {
	return math.Abs(notional) * math.Abs(stopPct)
}

// RiskPct expresses a loss as a fraction of equity. Non-positive equity is
// infinitely risky.
func RiskPct(loss, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return loss / equity
}

// NotionalForRisk is the largest position whose planned loss at stopPct
// stays within riskPct of equity. It returns 0 when the stop is zero.
func NotionalForRisk(equity, riskPct, stopPct float64) float64 {
	if stopPct == 0 || equity <= 0 || riskPct <= 0 {
		return 0
	}
	return equity * riskPct / math.Abs(stopPct)
}
