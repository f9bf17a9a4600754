// Package router implements the swap route discovery and pricing engine: a
// read-only registry of simulated constant-product pools and a finder that
// quotes direct and two-hop routes across them, picking the path with the
// highest estimated output. The whole package is pure computation over
// in-memory data, deterministic and safe for concurrent callers.
package router

import (
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var routerLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	routerLog = zerolog.New(out).With().Timestamp().Str("component", "router").Logger()
}

// maxAlternatives caps how many ranked candidates a quote reports back.
const maxAlternatives = 3

// Finder computes swap routes over an injected Registry. It holds no state of
// its own beyond the registry reference, so one Finder can serve any number
// of concurrent callers.
type Finder struct {
	registry *Registry
}

// NewFinder creates a route finder over the given registry.
func NewFinder(registry *Registry) *Finder {
	return &Finder{registry: registry}
}

// Registry exposes the injected registry for callers that need the token
// allow-list or price table alongside quoting.
func (f *Finder) Registry() *Registry {
	return f.registry
}

// RouteDetails is the fully assembled answer for a winning route.
type RouteDetails struct {
	Path            []string
	Pools           []string
	EstimatedOutput decimal.Decimal
	PriceImpact     decimal.Decimal
	GasCostUSD      decimal.Decimal
	TotalFee        decimal.Decimal
	// InputAmount, InputToken and OutputToken echo the caller's query as
	// given: an ETH query reports ETH here even though Path holds WETH.
	InputAmount decimal.Decimal
	InputToken  string
	OutputToken string
	// ExchangeRate is EstimatedOutput / InputAmount.
	ExchangeRate decimal.Decimal
	// MinimumOutput applies the fixed slippage buffer to EstimatedOutput.
	MinimumOutput decimal.Decimal
	RouteType     RouteKind
}

// Alternative summarizes one ranked candidate for caller transparency. The
// list never influences selection.
type Alternative struct {
	Path            []string
	EstimatedOutput decimal.Decimal
	// Dex is the first pool ID of the candidate, "dex:name".
	Dex string
}

// Quote bundles the selected route with up to three ranked alternatives.
type Quote struct {
	Details      RouteDetails
	Alternatives []Alternative
}

// FindBestRoute validates the query, searches direct and two-hop routes and
// returns the candidate with the maximum estimated output. Failures come back
// as a *RoutingError; the checks run in a fixed order and the first failing
// one wins: unsupported token, same token, non-positive amount.
func (f *Finder) FindBestRoute(fromToken, toToken string, amount decimal.Decimal) (*Quote, error) {
	routingFrom := f.registry.NormalizeToken(fromToken)
	routingTo := f.registry.NormalizeToken(toToken)

	if !f.registry.IsSupported(routingFrom) || !f.registry.IsSupported(routingTo) {
		return nil, errUnsupportedToken(fromToken, toToken, f.registry.SupportedTokens())
	}
	if routingFrom == routingTo {
		return nil, errSameToken()
	}
	if !amount.IsPositive() {
		return nil, errInvalidAmount()
	}

	return f.searchBestRoute(fromToken, toToken, routingFrom, routingTo, amount)
}

// searchBestRoute runs the candidate search and result assembly. A panic out
// of the math (possible only if malformed pool data slipped past the registry
// invariants) is converted into a structured internal error instead of
// crashing the caller.
func (f *Finder) searchBestRoute(
	inputToken, outputToken, routingFrom, routingTo string,
	amount decimal.Decimal,
) (quote *Quote, err error) {
	defer func() {
		if cause := recover(); cause != nil {
			routerLog.Error().
				Interface("cause", cause).
				Str("from", routingFrom).
				Str("to", routingTo).
				Msg("Route computation panicked")
			quote = nil
			err = errInternal(cause)
		}
	}()

	direct := f.findDirectRoutes(routingFrom, routingTo, amount)
	multiHop := f.findMultiHopRoutes(routingFrom, routingTo, amount)

	all := make([]Route, 0, len(direct)+len(multiHop))
	all = append(all, direct...)
	all = append(all, multiHop...)
	if len(all) == 0 {
		return nil, errRouteNotFound()
	}

	// Strict maximum; ties keep the first candidate in generation order so
	// repeated queries stay deterministic.
	best := all[0]
	for _, candidate := range all[1:] {
		if candidate.EstimatedOutput.GreaterThan(best.EstimatedOutput) {
			best = candidate
		}
	}

	return f.buildQuote(inputToken, outputToken, amount, best, all), nil
}

func (f *Finder) buildQuote(inputToken, outputToken string, amount decimal.Decimal, best Route, all []Route) *Quote {
	routeType := KindMultiHop
	if len(best.Path) == 2 {
		routeType = KindDirect
	}

	ranked := make([]Route, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EstimatedOutput.GreaterThan(ranked[j].EstimatedOutput)
	})
	if len(ranked) > maxAlternatives {
		ranked = ranked[:maxAlternatives]
	}

	alternatives := make([]Alternative, 0, len(ranked))
	for _, route := range ranked {
		dex := "unknown"
		if len(route.Pools) > 0 {
			dex = route.Pools[0]
		}
		alternatives = append(alternatives, Alternative{
			Path:            route.Path,
			EstimatedOutput: route.EstimatedOutput,
			Dex:             dex,
		})
	}

	return &Quote{
		Details: RouteDetails{
			Path:            best.Path,
			Pools:           best.Pools,
			EstimatedOutput: best.EstimatedOutput,
			PriceImpact:     best.PriceImpact,
			GasCostUSD:      best.GasCostUSD,
			TotalFee:        best.TotalFee,
			InputAmount:     amount,
			InputToken:      inputToken,
			OutputToken:     outputToken,
			ExchangeRate:    best.EstimatedOutput.Div(amount),
			MinimumOutput:   MinimumOutput(best.EstimatedOutput, DefaultSlippageBps),
			RouteType:       routeType,
		},
		Alternatives: alternatives,
	}
}

// estimateGasCost turns the flat per-kind gas units into a USD figure:
// units * priceGwei / 1e9 is the cost in ETH terms, converted through the
// WETH price from the registry's table.
func (f *Finder) estimateGasCost(kind RouteKind) decimal.Decimal {
	units := f.registry.gas.DirectUnits
	if kind == KindMultiHop {
		units = f.registry.gas.MultiHopUnits
	}

	wethPrice, _ := f.registry.TokenPrice("WETH")
	gasCostETH := decimal.NewFromInt(units).Mul(f.registry.gas.PriceGwei).Div(gweiPerUnit)
	return gasCostETH.Mul(wethPrice)
}
