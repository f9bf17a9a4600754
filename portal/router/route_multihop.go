package router

import "github.com/shopspring/decimal"

// findMultiHopRoutes composes pairs of direct routes through each candidate
// intermediate token: from -> mid priced with the original amount, then
// mid -> to priced with the first hop's output. Hop depth is capped at two,
// which keeps the search linear in the catalog size times the intermediate
// set rather than combinatorial.
func (f *Finder) findMultiHopRoutes(fromToken, toToken string, amount decimal.Decimal) []Route {
	var routes []Route

	for _, mid := range f.registry.intermediates {
		if mid == fromToken || mid == toToken {
			continue
		}

		firstHops := f.findDirectRoutes(fromToken, mid, amount)
		for _, first := range firstHops {
			if !first.EstimatedOutput.IsPositive() {
				continue
			}

			secondHops := f.findDirectRoutes(mid, toToken, first.EstimatedOutput)
			for _, second := range secondHops {
				if !second.EstimatedOutput.IsPositive() {
					continue
				}

				routes = append(routes, Route{
					Path:            []string{fromToken, mid, toToken},
					Pools:           append(append([]string{}, first.Pools...), second.Pools...),
					EstimatedOutput: second.EstimatedOutput,
					PriceImpact:     first.PriceImpact.Add(second.PriceImpact),
					GasCostUSD:      f.estimateGasCost(KindMultiHop),
					TotalFee:        first.TotalFee.Add(second.TotalFee),
				})
			}
		}
	}

	return routes
}
