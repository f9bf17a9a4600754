package router_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"

	"github.com/riseport-labs/rise-swap-hub/portal/router"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// referenceMarket mirrors the simulated deployment: seven pools across three
// dexes, the four-token allow-list and the fixed USD price table.
var referenceMarket = router.Market{
	Pools: []router.Pool{
		{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
		{Name: "WETH/RISE", TokenA: "WETH", TokenB: "RISE", ReserveA: dec("100"), ReserveB: dec("4000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
		{Name: "USDC/RISE", TokenA: "USDC", TokenB: "RISE", ReserveA: dec("50000"), ReserveB: dec("1000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
		{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("800"), ReserveB: dec("1600000"), FeePercent: dec("0.25"), Dex: "sushiswap"},
		{Name: "RISE/USDC", TokenA: "RISE", TokenB: "USDC", ReserveA: dec("2000000"), ReserveB: dec("100000"), FeePercent: dec("0.25"), Dex: "sushiswap"},
		{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1200"), ReserveB: dec("2400000"), FeePercent: dec("0.1"), Dex: "1inch"},
		{Name: "RISE/WETH", TokenA: "RISE", TokenB: "WETH", ReserveA: dec("5000000"), ReserveB: dec("125"), FeePercent: dec("0.2"), Dex: "1inch"},
	},
	SupportedTokens: []string{"WETH", "ETH", "USDC", "RISE"},
	PricesUSD: map[string]decimal.Decimal{
		"WETH": dec("2000"),
		"ETH":  dec("2000"),
		"USDC": dec("1"),
		"RISE": dec("0.05"),
	},
}

// setupTestFinder creates a finder over the reference market.
func setupTestFinder() *router.Finder {
	registry, err := router.NewRegistry(referenceMarket)
	if err != nil {
		panic(fmt.Sprintf("failed to build registry: %v", err))
	}
	return router.NewFinder(registry)
}

// setupThinFinder creates a finder over a market whose only WETH->RISE path
// runs through USDC, so two-hop search is the only way across.
func setupThinFinder() *router.Finder {
	market := router.Market{
		Pools: []router.Pool{
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
			{Name: "USDC/RISE", TokenA: "USDC", TokenB: "RISE", ReserveA: dec("50000"), ReserveB: dec("1000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
		},
		SupportedTokens: []string{"WETH", "ETH", "USDC", "RISE"},
		PricesUSD:       referenceMarket.PricesUSD,
	}
	registry, err := router.NewRegistry(market)
	if err != nil {
		panic(fmt.Sprintf("failed to build registry: %v", err))
	}
	return router.NewFinder(registry)
}

func TestFinder_DirectRoute(t *testing.T) {
	finder := setupTestFinder()

	quote, err := finder.FindBestRoute("WETH", "USDC", dec("1"))
	assert.NoError(t, err)
	assert.NotNil(t, quote)

	t.Logf("Quote: %+v", quote.Details)
	details := quote.Details
	assert.Equal(t, details.RouteType, router.KindDirect)
	assert.Equal(t, len(details.Path), 2)
	assert.Equal(t, details.Path[0], "WETH")
	assert.Equal(t, details.Path[1], "USDC")

	// The 1inch listing holds the deepest reserves and the lowest fee, so it
	// must out-quote the other two WETH/USDC pools.
	assert.Equal(t, len(details.Pools), 1)
	assert.Equal(t, details.Pools[0], "1inch:WETH/USDC")
	assert.True(t, details.EstimatedOutput.GreaterThan(dec("1996")))
	assert.True(t, details.EstimatedOutput.LessThan(dec("1997")))

	// 1 WETH into a 1200 WETH pool.
	assert.True(t, details.PriceImpact.GreaterThan(dec("0.08")))
	assert.True(t, details.PriceImpact.LessThan(dec("0.09")))

	// 50_000 units * 5 gwei = 0.00025 ETH at $2000.
	assert.True(t, details.GasCostUSD.Equal(dec("0.5")))
	assert.True(t, details.TotalFee.Equal(dec("0.1")))
	assert.True(t, details.ExchangeRate.Equal(details.EstimatedOutput))
	assert.True(t, details.MinimumOutput.Equal(details.EstimatedOutput.Mul(dec("0.995"))))

	// if all goes well
	t.Logf("Direct route test passed")
}

func TestFinder_EthAliasRouting(t *testing.T) {
	finder := setupTestFinder()

	ethQuote, err := finder.FindBestRoute("ETH", "USDC", dec("1"))
	assert.NoError(t, err)
	wethQuote, err := finder.FindBestRoute("WETH", "USDC", dec("1"))
	assert.NoError(t, err)

	// ETH routes exactly like WETH but the details keep the caller's symbol.
	assert.True(t, ethQuote.Details.EstimatedOutput.Equal(wethQuote.Details.EstimatedOutput))
	assert.Equal(t, ethQuote.Details.InputToken, "ETH")
	assert.Equal(t, ethQuote.Details.Path[0], "WETH")
	assert.Equal(t, wethQuote.Details.InputToken, "WETH")

	t.Logf("ETH alias test passed")
}

func TestFinder_MultiHopRoute(t *testing.T) {
	finder := setupThinFinder()

	quote, err := finder.FindBestRoute("WETH", "RISE", dec("1"))
	assert.NoError(t, err)
	assert.NotNil(t, quote)

	t.Logf("Quote: %+v", quote.Details)
	details := quote.Details
	assert.Equal(t, details.RouteType, router.KindMultiHop)
	assert.Equal(t, len(details.Path), 3)
	assert.Equal(t, details.Path[0], "WETH")
	assert.Equal(t, details.Path[1], "USDC")
	assert.Equal(t, details.Path[2], "RISE")
	assert.Equal(t, len(details.Pools), 2)
	assert.Equal(t, details.Pools[0], "uniswap:WETH/USDC")
	assert.Equal(t, details.Pools[1], "uniswap:USDC/RISE")

	// First hop yields ~1992 USDC; feeding that into the RISE pool lands
	// around 38_200 RISE.
	assert.True(t, details.EstimatedOutput.GreaterThan(dec("38000")))
	assert.True(t, details.EstimatedOutput.LessThan(dec("38500")))

	// Impacts add across hops: 0.1% plus ~3.98%.
	assert.True(t, details.PriceImpact.GreaterThan(dec("4")))
	assert.True(t, details.PriceImpact.LessThan(dec("4.2")))
	assert.True(t, details.TotalFee.Equal(dec("0.6")))

	// 100_000 units * 5 gwei = 0.0005 ETH at $2000.
	assert.True(t, details.GasCostUSD.Equal(dec("1")))

	// if all goes well
	t.Logf("Multi-hop route test passed")
}

func TestFinder_DirectBeatsMultiHopWhenListed(t *testing.T) {
	finder := setupTestFinder()

	// WETH->RISE has direct listings on uniswap and 1inch plus a two-hop
	// path through USDC. The search must still consider all of them and the
	// winner must carry the best output of the whole candidate set.
	quote, err := finder.FindBestRoute("WETH", "RISE", dec("1"))
	assert.NoError(t, err)

	t.Logf("Winner: %+v", quote.Details.Pools)
	for _, alt := range quote.Alternatives {
		assert.True(t, quote.Details.EstimatedOutput.GreaterThanOrEqual(alt.EstimatedOutput))
	}

	t.Logf("Candidate comparison test passed")
}

func TestFinder_AlternativesRankedWithWinnerFirst(t *testing.T) {
	finder := setupTestFinder()

	quote, err := finder.FindBestRoute("WETH", "USDC", dec("1"))
	assert.NoError(t, err)

	// Three WETH/USDC pools exist, so the ranking is full.
	assert.Equal(t, len(quote.Alternatives), 3)
	assert.True(t, quote.Alternatives[0].EstimatedOutput.Equal(quote.Details.EstimatedOutput))
	assert.Equal(t, quote.Alternatives[0].Dex, "1inch:WETH/USDC")

	for i := 1; i < len(quote.Alternatives); i++ {
		if quote.Alternatives[i].EstimatedOutput.GreaterThan(quote.Alternatives[i-1].EstimatedOutput) {
			t.Errorf("alternatives out of order at %d", i)
		}
	}

	t.Logf("Alternatives ranking test passed")
}

func TestFinder_TieKeepsCatalogOrder(t *testing.T) {
	// Two byte-identical listings on different dexes force an exact tie; the
	// winner must stay the first catalog entry on every query.
	market := router.Market{
		Pools: []router.Pool{
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "alpha"},
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "beta"},
		},
		SupportedTokens: []string{"WETH", "USDC"},
	}
	registry, err := router.NewRegistry(market)
	assert.NoError(t, err)
	finder := router.NewFinder(registry)

	for i := 0; i < 5; i++ {
		quote, err := finder.FindBestRoute("WETH", "USDC", dec("1"))
		assert.NoError(t, err)
		assert.Equal(t, quote.Details.Pools[0], "alpha:WETH/USDC")
	}

	t.Logf("Tie-break test passed")
}

func TestFinder_ValidationFailures(t *testing.T) {
	finder := setupTestFinder()

	testCases := []struct {
		name       string
		from       string
		to         string
		amount     decimal.Decimal
		expectKind router.ErrorKind
	}{
		{
			name:       "unknown source token",
			from:       "DOGE",
			to:         "USDC",
			amount:     dec("1"),
			expectKind: router.UnsupportedToken,
		},
		{
			name:       "unknown target token",
			from:       "WETH",
			to:         "SHIB",
			amount:     dec("1"),
			expectKind: router.UnsupportedToken,
		},
		{
			name:       "lowercase is not folded",
			from:       "weth",
			to:         "USDC",
			amount:     dec("1"),
			expectKind: router.UnsupportedToken,
		},
		{
			name:       "identical pair",
			from:       "USDC",
			to:         "USDC",
			amount:     dec("1"),
			expectKind: router.SameToken,
		},
		{
			name:       "eth and weth collapse to the same token",
			from:       "ETH",
			to:         "WETH",
			amount:     dec("1"),
			expectKind: router.SameToken,
		},
		{
			name:       "zero amount",
			from:       "WETH",
			to:         "USDC",
			amount:     decimal.Zero,
			expectKind: router.InvalidAmount,
		},
		{
			name:       "negative amount",
			from:       "WETH",
			to:         "USDC",
			amount:     dec("-3"),
			expectKind: router.InvalidAmount,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := finder.FindBestRoute(tc.from, tc.to, tc.amount)
			assert.Error(t, err)
			assert.Nil(t, quote)

			var routingErr *router.RoutingError
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected RoutingError, got %T", err)
			}
			assert.Equal(t, routingErr.Kind, tc.expectKind)

			if tc.expectKind == router.UnsupportedToken {
				assert.Equal(t, routingErr.SupportedTokens, []string{"WETH", "ETH", "USDC", "RISE"})
			}
		})
	}

	t.Logf("Validation failure test passed")
}

func TestFinder_UnsupportedTokenChecksBeforeAmount(t *testing.T) {
	finder := setupTestFinder()

	// Validation is ordered: a bad token wins over a bad amount.
	_, err := finder.FindBestRoute("DOGE", "USDC", decimal.Zero)
	var routingErr *router.RoutingError
	assert.True(t, errors.As(err, &routingErr))
	assert.Equal(t, routingErr.Kind, router.UnsupportedToken)
}

func TestFinder_NoRouteForIsolatedToken(t *testing.T) {
	// USDT is on the allow-list here but no pool trades it and no
	// intermediate reaches it.
	market := router.Market{
		Pools: []router.Pool{
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
		},
		SupportedTokens: []string{"WETH", "ETH", "USDC", "USDT"},
	}
	registry, err := router.NewRegistry(market)
	assert.NoError(t, err)
	finder := router.NewFinder(registry)

	quote, err := finder.FindBestRoute("WETH", "USDT", dec("1"))
	assert.Error(t, err)
	assert.Nil(t, quote)

	var routingErr *router.RoutingError
	assert.True(t, errors.As(err, &routingErr))
	assert.Equal(t, routingErr.Kind, router.RouteNotFound)
	if routingErr.Suggestion == "" {
		t.Error("expected a suggestion on the not-found error")
	}

	t.Logf("No-route test passed")
}

func TestFinder_OutputStaysBelowReserve(t *testing.T) {
	finder := setupTestFinder()

	// Even absurd trade sizes cannot drain a constant-product pool; the
	// largest USDC reserve in the market bounds every quote.
	for _, amount := range []string{"1", "1000", "1000000", "1000000000"} {
		quote, err := finder.FindBestRoute("WETH", "USDC", dec(amount))
		assert.NoError(t, err)
		assert.True(t, quote.Details.EstimatedOutput.LessThan(dec("2400000")))
	}

	t.Logf("Reserve bound test passed")
}

func TestFinder_OutputGrowsWithAmount(t *testing.T) {
	finder := setupTestFinder()

	previous := decimal.Zero
	for _, amount := range []string{"0.1", "1", "10", "100", "1000"} {
		quote, err := finder.FindBestRoute("WETH", "USDC", dec(amount))
		assert.NoError(t, err)
		if !quote.Details.EstimatedOutput.GreaterThan(previous) {
			t.Errorf("output did not grow at amount %s", amount)
		}
		previous = quote.Details.EstimatedOutput
	}

	t.Logf("Monotonicity test passed")
}

func TestFinder_QuotingIsDeterministic(t *testing.T) {
	finder := setupTestFinder()

	first, err := finder.FindBestRoute("RISE", "USDC", dec("5000"))
	assert.NoError(t, err)
	second, err := finder.FindBestRoute("RISE", "USDC", dec("5000"))
	assert.NoError(t, err)

	assert.True(t, first.Details.EstimatedOutput.Equal(second.Details.EstimatedOutput))
	assert.Equal(t, first.Details.Pools, second.Details.Pools)
	assert.Equal(t, len(first.Alternatives), len(second.Alternatives))

	t.Logf("Determinism test passed")
}

func TestFinder_QuoteResponseEnvelope(t *testing.T) {
	finder := setupTestFinder()

	response := finder.QuoteResponse("ETH", "USDC", dec("1"))
	assert.True(t, response.Success)
	assert.NotNil(t, response.RouteDetails)
	assert.Equal(t, response.RouteDetails.InputToken, "ETH")
	assert.Equal(t, response.RouteDetails.RouteType, "direct")
	assert.True(t, len(response.Alternatives) > 0)

	failure := finder.QuoteResponse("DOGE", "USDC", dec("1"))
	assert.False(t, failure.Success)
	assert.Nil(t, failure.RouteDetails)
	assert.Equal(t, failure.Error, "unsupported token: DOGE or USDC")
	assert.Equal(t, failure.SupportedTokens, []string{"WETH", "ETH", "USDC", "RISE"})

	t.Logf("Envelope test passed")
}

// Benchmark tests
func BenchmarkFinder_DirectRoute(b *testing.B) {
	finder := setupTestFinder()
	amount := dec("1")

	for b.Loop() {
		finder.FindBestRoute("WETH", "USDC", amount)
	}
}

func BenchmarkFinder_MultiHopRoute(b *testing.B) {
	finder := setupThinFinder()
	amount := dec("1")

	for b.Loop() {
		finder.FindBestRoute("WETH", "RISE", amount)
	}
}
