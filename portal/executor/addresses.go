package executor

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Token contract addresses on the RISE testnet. DAI keeps its mainnet
// address; the chain mirrors it for the demo deployments.
var tokenAddresses = map[string]common.Address{
	"WETH": common.HexToAddress("0x4200000000000000000000000000000000000006"),
	"USDT": common.HexToAddress("0x40918Ba7f132E0aCba2CE4de4c4baF9BD2D7D849"),
	"USDC": common.HexToAddress("0x8A93d247134d91e0de6f96547cB0204e5BE8e5D8"),
	"RISE": common.HexToAddress("0xd6e1afe5cA8D00A2EFC01B89997abE2De47fdfAf"),
	"DAI":  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
}

// DEX router addresses. Every simulated swap settles through the RISE DEX
// router; the others are kept for gas estimation per venue.
var routerAddresses = map[string]common.Address{
	"uniswap":   common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"),
	"sushiswap": common.HexToAddress("0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F"),
	"1inch":     common.HexToAddress("0x1111111254fb6c44bAC0beD2854e76F90643097d"),
	"rise_dex":  common.HexToAddress("0x08feDaACe14EB141E51282441b05182519D853D1"),
}

// tokenDecimals maps ERC20 symbols to their on-chain decimal count.
// Anything not listed uses 18.
var tokenDecimals = map[string]int32{
	"USDT": 6,
	"USDC": 6,
}

// TokenAddress returns the contract address for a token symbol.
func TokenAddress(token string) (common.Address, bool) {
	addr, ok := tokenAddresses[strings.ToUpper(token)]
	return addr, ok
}

// RouterAddress returns the router contract address for a DEX name.
func RouterAddress(dex string) (common.Address, bool) {
	addr, ok := routerAddresses[dex]
	return addr, ok
}

// Decimals returns the decimal count used when converting a token amount to
// base units.
func Decimals(token string) int32 {
	if d, ok := tokenDecimals[strings.ToUpper(token)]; ok {
		return d
	}
	return 18
}

// toBaseUnits scales a token amount into its smallest on-chain unit,
// truncating any dust below one unit.
func toBaseUnits(token string, amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(Decimals(token)).Truncate(0)
}

// explorerBaseURLs maps network labels to their block explorer roots.
var explorerBaseURLs = map[string]string{
	"mainnet":      "https://etherscan.io",
	"goerli":       "https://goerli.etherscan.io",
	"sepolia":      "https://sepolia.etherscan.io",
	"rise-testnet": "https://explorer.testnet.riselabs.xyz",
	"rise-mainnet": "https://explorer.riselabs.xyz",
}

// ExplorerBaseURL returns the explorer root for a network label, falling
// back to the RISE testnet explorer for unknown labels.
func ExplorerBaseURL(network string) string {
	if base, ok := explorerBaseURLs[network]; ok {
		return base
	}
	return explorerBaseURLs["rise-testnet"]
}
