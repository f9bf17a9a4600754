package router

import "github.com/shopspring/decimal"

// Pool is one simulated constant-product liquidity pool. Reserves are static
// for the process lifetime; quoting never mutates them because execution runs
// through a separate transaction path.
type Pool struct {
	// Display identifier, e.g. "WETH/USDC". Not unique on its own: the same
	// pair can be listed on several dexes with different reserves and fees.
	Name   string
	TokenA string
	TokenB string
	// Simulated on-hand liquidity. Both must be positive or pricing is undefined.
	ReserveA decimal.Decimal
	ReserveB decimal.Decimal
	// Fee as a percentage of the input amount, e.g. 0.3 means 0.3%.
	FeePercent decimal.Decimal
	// Dex labels which simulated exchange the pool belongs to,
	// e.g. "uniswap", "sushiswap", "1inch".
	Dex string
}

// ID returns the pool identifier used in route pool lists, "dex:name".
func (p Pool) ID() string {
	return p.Dex + ":" + p.Name
}

// Route is one candidate swap path produced during a search. Routes are built
// fresh per query, compared by estimated output and discarded afterwards.
type Route struct {
	// Token symbols in hop order: 2 entries for a direct swap, 3 for one
	// intermediate hop.
	Path []string
	// Pool IDs aligned with consecutive pairs in Path, one per hop.
	Pools           []string
	EstimatedOutput decimal.Decimal
	// Sum of per-hop impacts, in percent.
	PriceImpact decimal.Decimal
	GasCostUSD  decimal.Decimal
	// Sum of per-hop pool fees in percentage points, not compounded.
	TotalFee decimal.Decimal
}

// RouteKind distinguishes single-pool swaps from two-hop paths.
type RouteKind string

const (
	KindDirect   RouteKind = "direct"
	KindMultiHop RouteKind = "multi-hop"
)

// GasSchedule is the simulated execution-cost model: a flat gas-unit count
// per route kind at a fixed gas price, converted to USD through the WETH
// price. A simulation knob, not an oracle.
type GasSchedule struct {
	DirectUnits   int64
	MultiHopUnits int64
	PriceGwei     decimal.Decimal
}

// DefaultGasSchedule returns the reference deployment's gas model.
func DefaultGasSchedule() GasSchedule {
	return GasSchedule{
		DirectUnits:   50_000,
		MultiHopUnits: 100_000,
		PriceGwei:     decimal.NewFromInt(5),
	}
}

// DefaultIntermediates returns the reference set of candidate hop tokens.
func DefaultIntermediates() []string {
	return []string{"WETH", "USDC", "USDT"}
}

// Market is the registry's load-time input, produced by the config layer or
// assembled directly in tests.
type Market struct {
	Pools []Pool
	// The fixed allow-list of symbols queries may use. Configuration, not
	// derived from the pools: ETH is listed here alongside WETH even though
	// no pool trades ETH directly.
	SupportedTokens []string
	// Simulated USD price per token symbol.
	PricesUSD map[string]decimal.Decimal
	// Candidate intermediate tokens for two-hop routes. Defaults to
	// DefaultIntermediates when empty.
	Intermediates []string
	// Gas cost model. Zero fields fall back to DefaultGasSchedule.
	Gas GasSchedule
}
