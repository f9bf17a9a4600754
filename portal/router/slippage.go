package router

import "github.com/shopspring/decimal"

// DefaultSlippageBps is the fixed buffer applied to quoted outputs, in basis
// points. 50 bps = 0.5%.
const DefaultSlippageBps = 50

// MinimumOutput applies a slippage buffer to an expected output amount:
// expected * (10000 - slippageBps) / 10000.
func MinimumOutput(expected decimal.Decimal, slippageBps int64) decimal.Decimal {
	return expected.Mul(basisPoints.Sub(decimal.NewFromInt(slippageBps))).Div(basisPoints)
}
