package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riseport-labs/rise-swap-hub/portal/config"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
)

const marketTOML = `
supported_tokens = ["WETH", "ETH", "USDC", "RISE"]
intermediates = ["WETH", "USDC", "USDT"]

[prices_usd]
WETH = "2000"
ETH = "2000"
USDC = "1"
RISE = "0.05"

[gas]
direct_units = 50000
multi_hop_units = 100000
price_gwei = "5"

[[pools]]
name = "WETH/USDC"
token_a = "WETH"
token_b = "USDC"
reserve_a = "1000"
reserve_b = "2000000"
fee_percent = "0.3"
dex = "uniswap"

[[pools]]
name = "RISE/USDC"
token_a = "RISE"
token_b = "USDC"
reserve_a = "2000000"
reserve_b = "100000"
fee_percent = "0.25"
dex = "sushiswap"
`

const marketJSON = `{
  "supported_tokens": ["WETH", "ETH", "USDC"],
  "prices_usd": {"WETH": "2000", "ETH": "2000", "USDC": "1"},
  "pools": [
    {
      "name": "WETH/USDC",
      "token_a": "WETH",
      "token_b": "USDC",
      "reserve_a": "1200",
      "reserve_b": "2400000",
      "fee_percent": "0.1",
      "dex": "1inch"
    }
  ]
}`

func writeTempMarket(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing temp market config: %v", err)
	}
	return path
}

func TestLoadMarket_TOML(t *testing.T) {
	path := writeTempMarket(t, "market.toml", marketTOML)

	loader := config.NewMarketLoader()
	market, err := loader.LoadMarket(path)
	if err != nil {
		t.Fatalf("failed to load market config: %v", err)
	}

	if len(market.Pools) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(market.Pools))
	}
	if market.Pools[0].ID() != "uniswap:WETH/USDC" {
		t.Errorf("unexpected first pool: %s", market.Pools[0].ID())
	}
	if market.Pools[0].ReserveB.String() != "2000000" {
		t.Errorf("unexpected reserve_b: %s", market.Pools[0].ReserveB)
	}
	if len(market.SupportedTokens) != 4 {
		t.Errorf("expected 4 supported tokens, got %d", len(market.SupportedTokens))
	}
	if price, ok := market.PricesUSD["RISE"]; !ok || price.String() != "0.05" {
		t.Errorf("unexpected RISE price: %v", price)
	}
	if market.Gas.DirectUnits != 50000 || market.Gas.MultiHopUnits != 100000 {
		t.Errorf("unexpected gas units: %+v", market.Gas)
	}
	if market.Gas.PriceGwei.String() != "5" {
		t.Errorf("unexpected gas price: %s", market.Gas.PriceGwei)
	}

	// The loaded market must survive the registry's semantic checks.
	if _, err := router.NewRegistry(*market); err != nil {
		t.Errorf("loaded market rejected by registry: %v", err)
	}
}

func TestLoadMarket_JSON(t *testing.T) {
	path := writeTempMarket(t, "market.json", marketJSON)

	loader := config.NewMarketLoader()
	market, err := loader.LoadMarket(path)
	if err != nil {
		t.Fatalf("failed to load market config: %v", err)
	}

	if len(market.Pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(market.Pools))
	}
	if market.Pools[0].Dex != "1inch" {
		t.Errorf("unexpected dex: %s", market.Pools[0].Dex)
	}
	if len(market.Intermediates) != 0 {
		t.Errorf("expected no intermediates in file, got %v", market.Intermediates)
	}
}

func TestLoadMarket_BadNumber(t *testing.T) {
	content := `
supported_tokens = ["WETH", "USDC"]

[[pools]]
name = "WETH/USDC"
token_a = "WETH"
token_b = "USDC"
reserve_a = "not-a-number"
reserve_b = "2000000"
fee_percent = "0.3"
dex = "uniswap"
`
	path := writeTempMarket(t, "market.toml", content)

	loader := config.NewMarketLoader()
	if _, err := loader.LoadMarket(path); err == nil {
		t.Fatalf("expected error for bad reserve, got nil")
	}
}

func TestLoadMarket_WrongExtension(t *testing.T) {
	path := writeTempMarket(t, "market.yaml", "pools: []")

	loader := config.NewMarketLoader()
	if _, err := loader.LoadMarket(path); err == nil {
		t.Fatalf("expected error for unsupported extension, got nil")
	}
}

func TestLoadMarket_MissingFile(t *testing.T) {
	loader := config.NewMarketLoader()
	if _, err := loader.LoadMarket(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}
