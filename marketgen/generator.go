// Package marketgen produces the market catalog the portal loads at startup:
// the simulated liquidity pools, the token allow-list, the USD price table
// and the gas model. The catalog is written through the same file schema the
// config loader reads, so a generated file is loadable by construction, and
// every catalog passes the registry's semantic checks before it is written.
package marketgen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/riseport-labs/rise-swap-hub/portal/config"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
)

// OutputFormat specifies the output format for the generated catalog.
type OutputFormat string

const (
	FormatTOML OutputFormat = "toml"
	FormatJSON OutputFormat = "json"
	FormatAuto OutputFormat = "auto" // Determine from file extension
)

// GeneratorConfig configures the catalog generator.
type GeneratorConfig struct {
	// Path to write the market catalog. Empty validates without writing.
	OutputPath string

	// Output format (default: auto from extension)
	OutputFormat OutputFormat

	// Catalog to emit. Nil means the reference market.
	Market *config.MarketFile
}

// Generator builds, validates and writes a market catalog.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a catalog generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GenerateResult summarizes a generation run.
type GenerateResult struct {
	// Number of pools in the catalog
	PoolCount int

	// Number of tokens in the allow-list
	TokenCount int

	// Path where the catalog was written, empty in validate-only mode
	OutputPath string
}

// Generate validates the catalog and writes it to the configured path. The
// validation pass reuses the portal's own load path: the catalog is parsed
// into the router's market form and pushed through the registry build, so a
// pool that would be rejected at server startup fails generation instead.
func (g *Generator) Generate() (*GenerateResult, error) {
	file := g.config.Market
	if file == nil {
		file = ReferenceMarket()
	}

	market, err := file.ToMarket()
	if err != nil {
		return nil, fmt.Errorf("catalog does not parse: %w", err)
	}

	registry, err := router.NewRegistry(*market)
	if err != nil {
		return nil, fmt.Errorf("catalog failed registry validation: %w", err)
	}

	result := &GenerateResult{
		PoolCount:  registry.PoolCount(),
		TokenCount: len(registry.SupportedTokens()),
	}

	if g.config.OutputPath != "" {
		if err := g.write(file); err != nil {
			return nil, fmt.Errorf("failed to write catalog: %w", err)
		}
		result.OutputPath = g.config.OutputPath
	}

	return result, nil
}

func (g *Generator) write(file *config.MarketFile) error {
	dir := filepath.Dir(g.config.OutputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	format := g.config.OutputFormat
	if format == FormatAuto || format == "" {
		format = formatFromExtension(g.config.OutputPath)
	}

	var data []byte
	var err error

	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(file, "", "  ")
	default:
		data, err = toml.Marshal(file)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	return os.WriteFile(g.config.OutputPath, data, 0644)
}

// formatFromExtension determines output format from file extension.
func formatFromExtension(path string) OutputFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON
	default:
		return FormatTOML // Default to TOML
	}
}

// ReferenceMarket returns the simulated deployment's catalog: seven pools
// across uniswap, sushiswap and 1inch, the four-token allow-list, the fixed
// USD price table and the flat gas model. Reserves and fees are strings so
// they survive both encodings without float drift.
func ReferenceMarket() *config.MarketFile {
	return &config.MarketFile{
		SupportedTokens: []string{"WETH", "ETH", "USDC", "RISE"},
		PricesUSD: map[string]string{
			"WETH": "2000",
			"ETH":  "2000",
			"USDC": "1",
			"RISE": "0.05",
		},
		Intermediates: []string{"WETH", "USDC", "USDT"},
		Gas: config.GasFile{
			DirectUnits:   50_000,
			MultiHopUnits: 100_000,
			PriceGwei:     "5",
		},
		Pools: []config.PoolFile{
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: "1000", ReserveB: "2000000", FeePercent: "0.3", Dex: "uniswap"},
			{Name: "WETH/RISE", TokenA: "WETH", TokenB: "RISE", ReserveA: "100", ReserveB: "4000000", FeePercent: "0.3", Dex: "uniswap"},
			{Name: "USDC/RISE", TokenA: "USDC", TokenB: "RISE", ReserveA: "50000", ReserveB: "1000000", FeePercent: "0.3", Dex: "uniswap"},
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: "800", ReserveB: "1600000", FeePercent: "0.25", Dex: "sushiswap"},
			{Name: "RISE/USDC", TokenA: "RISE", TokenB: "USDC", ReserveA: "2000000", ReserveB: "100000", FeePercent: "0.25", Dex: "sushiswap"},
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: "1200", ReserveB: "2400000", FeePercent: "0.1", Dex: "1inch"},
			{Name: "RISE/WETH", TokenA: "RISE", TokenB: "WETH", ReserveA: "5000000", ReserveB: "125", FeePercent: "0.2", Dex: "1inch"},
		},
	}
}
