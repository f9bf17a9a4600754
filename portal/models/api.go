// Package models defines the JSON wire types shared by the HTTP API and the
// chat layer. Amounts cross the boundary as JSON numbers; all internal
// computation stays decimal.
package models

// RouteRequest is the body of a route query.
type RouteRequest struct {
	FromToken string  `json:"from_token"`
	ToToken   string  `json:"to_token"`
	Amount    float64 `json:"amount"`
}

// RouteDetails describes the selected route. All fields are present on
// success.
type RouteDetails struct {
	// Token symbols in hop order; the first and last are the normalized
	// endpoints of the query.
	Path []string `json:"path"`
	// Pool identifiers ("dex:poolName"), one per hop.
	Pools           []string `json:"pools"`
	EstimatedOutput float64  `json:"estimated_output"`
	// Percent.
	PriceImpact float64 `json:"price_impact"`
	GasCostUSD  float64 `json:"gas_cost_usd"`
	// Percentage points summed across hops.
	TotalFee    float64 `json:"total_fee"`
	InputAmount float64 `json:"input_amount"`
	// The query's symbols as given, before ETH/WETH normalization.
	InputToken    string  `json:"input_token"`
	OutputToken   string  `json:"output_token"`
	ExchangeRate  float64 `json:"exchange_rate"`
	MinimumOutput float64 `json:"minimum_output"`
	// "direct" or "multi-hop".
	RouteType string `json:"route_type"`
}

// RouteAlternative is one ranked candidate reported alongside the winner.
type RouteAlternative struct {
	Path            []string `json:"path"`
	EstimatedOutput float64  `json:"estimated_output"`
	Dex             string   `json:"dex"`
}

// RouteResponse is the success/failure envelope for route queries.
type RouteResponse struct {
	Success      bool               `json:"success"`
	RouteDetails *RouteDetails      `json:"route_details,omitempty"`
	Alternatives []RouteAlternative `json:"alternatives,omitempty"`

	// Failure fields.
	Error           string   `json:"error,omitempty"`
	Suggestion      string   `json:"suggestion,omitempty"`
	SupportedTokens []string `json:"supported_tokens,omitempty"`
}

// SimulateRequest asks for a price-impact ladder over several trade sizes.
type SimulateRequest struct {
	FromToken string    `json:"from_token"`
	ToToken   string    `json:"to_token"`
	Amounts   []float64 `json:"amounts"`
}

// ImpactSimulation is one priced amount in the ladder.
type ImpactSimulation struct {
	Amount      float64 `json:"amount"`
	Output      float64 `json:"output"`
	PriceImpact float64 `json:"price_impact"`
	GasCost     float64 `json:"gas_cost"`
}

// SimulateResponse is the impact ladder for a token pair. Amounts that could
// not be quoted are absent from Simulations.
type SimulateResponse struct {
	TokenPair       string             `json:"token_pair"`
	Simulations     []ImpactSimulation `json:"simulations"`
	Recommendations []string           `json:"recommendations"`
}

// TokensResponse lists the token allow-list with the simulated USD prices.
type TokensResponse struct {
	Tokens    []string           `json:"tokens"`
	PricesUSD map[string]float64 `json:"prices_usd"`
}
