package router

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Impact thresholds for the recommendation text, in percent.
var (
	impactWarnAbove    = decimal.NewFromInt(5)
	impactOptimalUnder = decimal.NewFromInt(1)
)

// ImpactPoint is one priced amount in a price-impact ladder.
type ImpactPoint struct {
	Amount      decimal.Decimal
	Output      decimal.Decimal
	PriceImpact decimal.Decimal
	GasCostUSD  decimal.Decimal
}

// ImpactReport is the outcome of simulating a token pair across several trade
// sizes. Amounts whose quote failed are simply absent from Simulations.
type ImpactReport struct {
	TokenPair       string
	Simulations     []ImpactPoint
	Recommendations []string
}

// SimulateImpact quotes the best route for each amount in turn and collects
// the resulting impact ladder, flagging trade sizes whose impact crosses the
// warning threshold and marking those that stay under the optimal one.
func (f *Finder) SimulateImpact(fromToken, toToken string, amounts []decimal.Decimal) ImpactReport {
	report := ImpactReport{
		TokenPair: fmt.Sprintf("%s/%s", fromToken, toToken),
	}

	for _, amount := range amounts {
		quote, err := f.FindBestRoute(fromToken, toToken, amount)
		if err != nil {
			continue
		}
		report.Simulations = append(report.Simulations, ImpactPoint{
			Amount:      amount,
			Output:      quote.Details.EstimatedOutput,
			PriceImpact: quote.Details.PriceImpact,
			GasCostUSD:  quote.Details.GasCostUSD,
		})
	}

	report.Recommendations = amountRecommendations(report.Simulations)
	return report
}

func amountRecommendations(simulations []ImpactPoint) []string {
	var recommendations []string
	for _, sim := range simulations {
		switch {
		case sim.PriceImpact.GreaterThan(impactWarnAbove):
			recommendations = append(recommendations,
				fmt.Sprintf("price impact too high for %s (%s%%)", sim.Amount, sim.PriceImpact.StringFixed(2)))
		case sim.PriceImpact.LessThan(impactOptimalUnder):
			recommendations = append(recommendations,
				fmt.Sprintf("optimal price impact for %s (%s%%)", sim.Amount, sim.PriceImpact.StringFixed(2)))
		}
	}
	return recommendations
}
