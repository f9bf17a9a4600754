package router

import "github.com/shopspring/decimal"

var (
	hundred     = decimal.NewFromInt(100)
	basisPoints = decimal.NewFromInt(10_000)
	gweiPerUnit = decimal.NewFromInt(1_000_000_000)
)

// feeMultiplier converts a percentage fee into the fraction of the input that
// reaches the pool: (10000 - fee*100) / 10000, the fee expressed in basis
// points subtracted from a 10000 base. 0.3% yields 0.997.
func feeMultiplier(feePercent decimal.Decimal) decimal.Decimal {
	return basisPoints.Sub(feePercent.Mul(hundred)).Div(basisPoints)
}

// swapOutput prices a single swap with the constant-product formula after
// deducting the pool fee from the input:
//
//	out = reserveOut * amountInAfterFee / (reserveIn + amountInAfterFee)
//
// The product of the reserves is preserved ignoring fees. Reserves are never
// mutated here; this is pricing only, execution happens elsewhere.
func swapOutput(amountIn, reserveIn, reserveOut, feePercent decimal.Decimal) decimal.Decimal {
	amountInAfterFee := amountIn.Mul(feeMultiplier(feePercent))
	return reserveOut.Mul(amountInAfterFee).Div(reserveIn.Add(amountInAfterFee))
}

// priceImpact approximates the percentage of pool depth a trade consumes,
// (amountIn / reserveIn) * 100. A deliberate linear proxy, not the true
// marginal-price shift of the constant-product curve.
func priceImpact(amountIn, reserveIn decimal.Decimal) decimal.Decimal {
	return amountIn.Div(reserveIn).Mul(hundred)
}

// orientReserves returns the pool reserves ordered so the first value backs
// the input token. The caller guarantees fromToken is one of the pool's pair.
func orientReserves(pool Pool, fromToken string) (reserveIn, reserveOut decimal.Decimal) {
	if pool.TokenA == fromToken {
		return pool.ReserveA, pool.ReserveB
	}
	return pool.ReserveB, pool.ReserveA
}
