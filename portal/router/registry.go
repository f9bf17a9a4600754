package router

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Registry holds the static liquidity-pool catalog plus the token allow-list,
// the simulated USD price table, the intermediate-token set and the gas model.
// It is populated once at startup and read-only afterwards, so any number of
// concurrent route searches can share one instance without locking.
type Registry struct {
	pools         []Pool
	supported     []string
	supportedSet  map[string]struct{}
	prices        map[string]decimal.Decimal
	intermediates []string
	gas           GasSchedule
}

// NewRegistry validates the market data and builds the read-only registry.
// Every pool must carry two distinct tokens and strictly positive reserves;
// a zero reserve makes constant-product pricing undefined, so bad pools are
// rejected at load time rather than discovered mid-query.
func NewRegistry(market Market) (*Registry, error) {
	if len(market.SupportedTokens) == 0 {
		return nil, errors.New("market config has no supported tokens")
	}

	for i, pool := range market.Pools {
		if pool.Name == "" || pool.Dex == "" {
			return nil, fmt.Errorf("pool %d: name and dex are required", i)
		}
		if pool.TokenA == "" || pool.TokenB == "" {
			return nil, fmt.Errorf("pool %s: both token symbols are required", pool.ID())
		}
		if pool.TokenA == pool.TokenB {
			return nil, fmt.Errorf("pool %s: tokens must differ", pool.ID())
		}
		if !pool.ReserveA.IsPositive() || !pool.ReserveB.IsPositive() {
			return nil, fmt.Errorf("pool %s: reserves must be positive", pool.ID())
		}
		if pool.FeePercent.IsNegative() {
			return nil, fmt.Errorf("pool %s: fee cannot be negative", pool.ID())
		}
		if pool.FeePercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("pool %s: fee of %s%% consumes the whole input", pool.ID(), pool.FeePercent)
		}
	}

	supportedSet := make(map[string]struct{}, len(market.SupportedTokens))
	for _, symbol := range market.SupportedTokens {
		if symbol == "" {
			return nil, errors.New("supported token symbols cannot be empty")
		}
		supportedSet[symbol] = struct{}{}
	}

	prices := make(map[string]decimal.Decimal, len(market.PricesUSD))
	for symbol, price := range market.PricesUSD {
		if price.IsNegative() {
			return nil, fmt.Errorf("token %s: price cannot be negative", symbol)
		}
		prices[symbol] = price
	}

	intermediates := slices.Clone(market.Intermediates)
	if len(intermediates) == 0 {
		intermediates = DefaultIntermediates()
	}

	gas := market.Gas
	if gas.DirectUnits == 0 {
		gas.DirectUnits = DefaultGasSchedule().DirectUnits
	}
	if gas.MultiHopUnits == 0 {
		gas.MultiHopUnits = DefaultGasSchedule().MultiHopUnits
	}
	if gas.PriceGwei.IsZero() {
		gas.PriceGwei = DefaultGasSchedule().PriceGwei
	}

	registry := &Registry{
		pools:         slices.Clone(market.Pools),
		supported:     slices.Clone(market.SupportedTokens),
		supportedSet:  supportedSet,
		prices:        prices,
		intermediates: intermediates,
		gas:           gas,
	}

	routerLog.Info().
		Int("pools", len(registry.pools)).
		Int("tokens", len(registry.supported)).
		Int("intermediates", len(registry.intermediates)).
		Msg("Market registry built")
	return registry, nil
}

// Pools returns the full catalog in load order. The order is stable so that
// downstream tie-breaking stays deterministic.
func (r *Registry) Pools() []Pool {
	return slices.Clone(r.pools)
}

// PoolCount returns the catalog size without copying it.
func (r *Registry) PoolCount() int {
	return len(r.pools)
}

// SupportedTokens returns the configured allow-list in its configured order.
func (r *Registry) SupportedTokens() []string {
	return slices.Clone(r.supported)
}

// IsSupported reports whether queries may use the given symbol.
func (r *Registry) IsSupported(symbol string) bool {
	_, ok := r.supportedSet[symbol]
	return ok
}

// NormalizeToken maps ETH to WETH: routing never distinguishes the native
// currency from its wrapped form. Every other symbol passes through unchanged.
func (r *Registry) NormalizeToken(symbol string) string {
	if symbol == "ETH" {
		return "WETH"
	}
	return symbol
}

// TokenPrice returns the simulated USD price for a symbol.
func (r *Registry) TokenPrice(symbol string) (decimal.Decimal, bool) {
	price, ok := r.prices[symbol]
	return price, ok
}

// PricesUSD returns a copy of the whole price table.
func (r *Registry) PricesUSD() map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(r.prices))
	for symbol, price := range r.prices {
		prices[symbol] = price
	}
	return prices
}

// Intermediates returns the candidate hop tokens for two-hop routes.
func (r *Registry) Intermediates() []string {
	return slices.Clone(r.intermediates)
}

// Gas returns the gas cost model.
func (r *Registry) Gas() GasSchedule {
	return r.gas
}
