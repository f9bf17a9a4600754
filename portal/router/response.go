package router

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/riseport-labs/rise-swap-hub/portal/models"
)

// QuoteResponse runs FindBestRoute and folds either outcome into the wire
// envelope served by the HTTP and chat layers. Decimals leave the package as
// floats here and nowhere else.
func (f *Finder) QuoteResponse(fromToken, toToken string, amount decimal.Decimal) models.RouteResponse {
	quote, err := f.FindBestRoute(fromToken, toToken, amount)
	if err != nil {
		return convertToWireError(err)
	}
	return convertToWireQuote(quote)
}

// SimulateResponse runs the impact ladder for the given float amounts and
// converts the report for the wire.
func (f *Finder) SimulateResponse(fromToken, toToken string, amounts []float64) models.SimulateResponse {
	decAmounts := make([]decimal.Decimal, 0, len(amounts))
	for _, amount := range amounts {
		decAmounts = append(decAmounts, decimal.NewFromFloat(amount))
	}
	return convertToWireReport(f.SimulateImpact(fromToken, toToken, decAmounts))
}

// TokensResponse snapshots the allow-list and price table for the wire.
func (r *Registry) TokensResponse() models.TokensResponse {
	prices := make(map[string]float64, len(r.prices))
	for symbol, price := range r.prices {
		prices[symbol] = price.InexactFloat64()
	}
	return models.TokensResponse{
		Tokens:    r.SupportedTokens(),
		PricesUSD: prices,
	}
}

func convertToWireQuote(quote *Quote) models.RouteResponse {
	details := convertToWireDetails(quote.Details)
	alternatives := make([]models.RouteAlternative, 0, len(quote.Alternatives))
	for _, alt := range quote.Alternatives {
		alternatives = append(alternatives, models.RouteAlternative{
			Path:            alt.Path,
			EstimatedOutput: alt.EstimatedOutput.InexactFloat64(),
			Dex:             alt.Dex,
		})
	}

	return models.RouteResponse{
		Success:      true,
		RouteDetails: &details,
		Alternatives: alternatives,
	}
}

func convertToWireDetails(details RouteDetails) models.RouteDetails {
	return models.RouteDetails{
		Path:            details.Path,
		Pools:           details.Pools,
		EstimatedOutput: details.EstimatedOutput.InexactFloat64(),
		PriceImpact:     details.PriceImpact.InexactFloat64(),
		GasCostUSD:      details.GasCostUSD.InexactFloat64(),
		TotalFee:        details.TotalFee.InexactFloat64(),
		InputAmount:     details.InputAmount.InexactFloat64(),
		InputToken:      details.InputToken,
		OutputToken:     details.OutputToken,
		ExchangeRate:    details.ExchangeRate.InexactFloat64(),
		MinimumOutput:   details.MinimumOutput.InexactFloat64(),
		RouteType:       string(details.RouteType),
	}
}

// convertToWireError keeps the structured failure intact when it is a
// *RoutingError and demotes anything else to an internal failure.
func convertToWireError(err error) models.RouteResponse {
	var routingErr *RoutingError
	if !errors.As(err, &routingErr) {
		routingErr = errInternal(err)
	}

	return models.RouteResponse{
		Success:         false,
		Error:           routingErr.Message,
		Suggestion:      routingErr.Suggestion,
		SupportedTokens: routingErr.SupportedTokens,
	}
}

func convertToWireReport(report ImpactReport) models.SimulateResponse {
	simulations := make([]models.ImpactSimulation, 0, len(report.Simulations))
	for _, point := range report.Simulations {
		simulations = append(simulations, models.ImpactSimulation{
			Amount:      point.Amount.InexactFloat64(),
			Output:      point.Output.InexactFloat64(),
			PriceImpact: point.PriceImpact.InexactFloat64(),
			GasCost:     point.GasCostUSD.InexactFloat64(),
		})
	}

	recommendations := report.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return models.SimulateResponse{
		TokenPair:       report.TokenPair,
		Simulations:     simulations,
		Recommendations: recommendations,
	}
}
