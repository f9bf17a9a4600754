package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-getter"
	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/riseport-labs/rise-swap-hub/portal/router"
)

// MarketFormat identifies the on-disk encoding of a market catalog.
type MarketFormat string

const (
	MarketFormatTOML MarketFormat = "toml"
	MarketFormatJSON MarketFormat = "json"
	// MarketFormatAuto determines the format from the file extension.
	MarketFormatAuto MarketFormat = "auto"
)

// PoolFile is one pool entry in a market catalog file. Numeric fields are
// strings so reserves and fees survive both encodings without float drift.
type PoolFile struct {
	Name       string `toml:"name" json:"name"`
	TokenA     string `toml:"token_a" json:"token_a"`
	TokenB     string `toml:"token_b" json:"token_b"`
	ReserveA   string `toml:"reserve_a" json:"reserve_a"`
	ReserveB   string `toml:"reserve_b" json:"reserve_b"`
	FeePercent string `toml:"fee_percent" json:"fee_percent"`
	Dex        string `toml:"dex" json:"dex"`
}

// GasFile is the gas model block of a market catalog file.
type GasFile struct {
	DirectUnits   int64  `toml:"direct_units" json:"direct_units"`
	MultiHopUnits int64  `toml:"multi_hop_units" json:"multi_hop_units"`
	PriceGwei     string `toml:"price_gwei" json:"price_gwei"`
}

// MarketFile is the full market catalog format, shared by TOML and JSON.
type MarketFile struct {
	SupportedTokens []string          `toml:"supported_tokens" json:"supported_tokens"`
	PricesUSD       map[string]string `toml:"prices_usd" json:"prices_usd"`
	Intermediates   []string          `toml:"intermediates" json:"intermediates"`
	Gas             GasFile           `toml:"gas" json:"gas"`
	Pools           []PoolFile        `toml:"pools" json:"pools"`
}

// MarketLoader reads market catalog files into the router's load-time form.
type MarketLoader struct{}

// NewMarketLoader creates a market catalog loader.
func NewMarketLoader() *MarketLoader {
	return &MarketLoader{}
}

// LoadMarket reads and decodes the catalog at path, picking the decoder from
// the file extension. The result still goes through router.NewRegistry for
// the semantic checks; this layer only validates decoding and number parsing.
func (l *MarketLoader) LoadMarket(path string) (*router.Market, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read market config: %w", err)
	}

	var file MarketFile
	switch marketFormatFromExtension(path) {
	case MarketFormatTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse market config %s: %w", path, err)
		}
	case MarketFormatJSON:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse market config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("market config must be a .toml or .json file, got %s", filepath.Ext(path))
	}

	return file.ToMarket()
}

// ToMarket converts the parsed file into the router's input, parsing every
// numeric string into a decimal.
func (f *MarketFile) ToMarket() (*router.Market, error) {
	market := router.Market{
		SupportedTokens: f.SupportedTokens,
		Intermediates:   f.Intermediates,
		PricesUSD:       make(map[string]decimal.Decimal, len(f.PricesUSD)),
	}

	for symbol, raw := range f.PricesUSD {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("token %s: bad price %q: %w", symbol, raw, err)
		}
		market.PricesUSD[symbol] = price
	}

	for i, pool := range f.Pools {
		reserveA, err := decimal.NewFromString(pool.ReserveA)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): bad reserve_a %q: %w", i, pool.Name, pool.ReserveA, err)
		}
		reserveB, err := decimal.NewFromString(pool.ReserveB)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): bad reserve_b %q: %w", i, pool.Name, pool.ReserveB, err)
		}
		fee, err := decimal.NewFromString(pool.FeePercent)
		if err != nil {
			return nil, fmt.Errorf("pool %d (%s): bad fee_percent %q: %w", i, pool.Name, pool.FeePercent, err)
		}
		market.Pools = append(market.Pools, router.Pool{
			Name:       pool.Name,
			TokenA:     pool.TokenA,
			TokenB:     pool.TokenB,
			ReserveA:   reserveA,
			ReserveB:   reserveB,
			FeePercent: fee,
			Dex:        pool.Dex,
		})
	}

	if f.Gas.DirectUnits != 0 || f.Gas.MultiHopUnits != 0 || f.Gas.PriceGwei != "" {
		gas := router.GasSchedule{
			DirectUnits:   f.Gas.DirectUnits,
			MultiHopUnits: f.Gas.MultiHopUnits,
		}
		if f.Gas.PriceGwei != "" {
			price, err := decimal.NewFromString(f.Gas.PriceGwei)
			if err != nil {
				return nil, fmt.Errorf("gas: bad price_gwei %q: %w", f.Gas.PriceGwei, err)
			}
			gas.PriceGwei = price
		}
		market.Gas = gas
	}

	return &market, nil
}

func marketFormatFromExtension(path string) MarketFormat {
	switch filepath.Ext(path) {
	case ".toml":
		return MarketFormatTOML
	case ".json":
		return MarketFormatJSON
	default:
		return MarketFormatAuto
	}
}

// fetchTimeout bounds remote market catalog downloads, in seconds.
const fetchTimeout = 120

// FetchMarketConfig downloads a market catalog from a remote source into dst.
// Src takes any go-getter address: a GitHub path like
// "github.com/riseport-labs/market-configs//testnet/market.toml" or a plain
// https URL. Deployments that mount the file locally never call this.
func FetchMarketConfig(src string, dst string) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(fetchTimeout*time.Second))
	defer cancel()
	opts := getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
		},
		Getters: map[string]getter.Getter{
			"git":   &getter.GitGetter{},
			"http":  &getter.HttpGetter{},
			"https": &getter.HttpGetter{},
		},
	}
	return opts.Get()
}
