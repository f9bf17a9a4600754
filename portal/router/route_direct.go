package router

import "github.com/shopspring/decimal"

// findDirectRoutes scans the whole catalog for pools trading the {from, to}
// pair in either orientation and prices each match independently. The same
// pair listed on several dexes yields one candidate per listing.
func (f *Finder) findDirectRoutes(fromToken, toToken string, amount decimal.Decimal) []Route {
	var routes []Route

	for _, pool := range f.registry.pools {
		matchesForward := pool.TokenA == fromToken && pool.TokenB == toToken
		matchesReverse := pool.TokenA == toToken && pool.TokenB == fromToken
		if !matchesForward && !matchesReverse {
			continue
		}

		reserveIn, reserveOut := orientReserves(pool, fromToken)
		routes = append(routes, Route{
			Path:            []string{fromToken, toToken},
			Pools:           []string{pool.ID()},
			EstimatedOutput: swapOutput(amount, reserveIn, reserveOut, pool.FeePercent),
			PriceImpact:     priceImpact(amount, reserveIn),
			GasCostUSD:      f.estimateGasCost(KindDirect),
			TotalFee:        pool.FeePercent,
		})
	}

	return routes
}
