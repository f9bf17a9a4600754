package executor

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Gas figures observed on the RISE testnet for each operation class.
const (
	gasEthSwap       = 170166
	gasTokenSwap     = 150000
	gasEthTransfer   = 21000
	gasTokenTransfer = 65000
	gasApproval      = 50000

	// swapGasLimit is the limit swaps are submitted with, used when
	// reserving gas out of the ETH balance.
	swapGasLimit = 700000
)

// swapGasBaseline is the per-venue gas estimate for a plain token swap.
var swapGasBaseline = map[string]int64{
	"uniswap":   150000,
	"sushiswap": 140000,
	"1inch":     200000,
}

const defaultSwapGasBaseline = 150000

var (
	swapGasPriceGwei     = decimal.RequireFromString("0.0001")
	transferGasPriceGwei = decimal.RequireFromString("0.0000001")
	gweiInETH            = decimal.New(1, -9)
	safetyMargin         = decimal.RequireFromString("0.00001")

	swapFeeFactor     = decimal.RequireFromString("0.997")
	fallbackFillRatio = decimal.RequireFromString("0.995")
)

// EstimateSwapGas estimates the gas a swap needs on the given venue,
// including the approval overhead for non-ETH inputs.
func EstimateSwapGas(fromToken, dex string) int64 {
	base, ok := swapGasBaseline[dex]
	if !ok {
		base = defaultSwapGasBaseline
	}
	if strings.ToUpper(fromToken) != "ETH" {
		base += gasApproval
	}
	return base
}

const (
	defaultNetworkName = "RISE Testnet"
	defaultChainID     = 11155931
	defaultRPCURL      = "https://testnet.riselabs.xyz"

	// defaultAccountAddress is the demo account the simulation settles
	// from when no address is configured.
	defaultAccountAddress = "0xABCDEF123456789012345678901234567890ABCD"

	defaultConfirmAfter   = 2 * time.Second
	defaultBlockTime      = 2 * time.Second
	defaultReceiptTimeout = 60 * time.Second

	baseBlockNumber = 1_284_530
)

func defaultBalances() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"ETH":  decimal.RequireFromString("3.2"),
		"WETH": decimal.RequireFromString("1.5"),
		"USDC": decimal.NewFromInt(1200),
		"USDT": decimal.NewFromInt(800),
		"DAI":  decimal.NewFromInt(900),
		"RISE": decimal.NewFromInt(15000),
	}
}

func defaultPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"ETH":  decimal.NewFromInt(2000),
		"WETH": decimal.NewFromInt(2000),
		"USDC": decimal.NewFromInt(1),
		"USDT": decimal.NewFromInt(1),
		"DAI":  decimal.NewFromInt(1),
		"RISE": decimal.RequireFromString("0.05"),
	}
}

// Tokens the transfer path can move as ERC20s. WETH and DAI have no
// transfer wiring on the demo deployment.
var transferableTokens = map[string]struct{}{
	"USDT": {},
	"USDC": {},
	"RISE": {},
}

// Config tunes the simulated chain client. Zero values take RISE testnet
// defaults.
type Config struct {
	NetworkName string
	ChainID     int64
	RPCURL      string
	ExplorerURL string

	// AccountAddress is the account the simulation settles from.
	AccountAddress string
	// InitialBalances seeds the account ledger, token symbol to amount.
	InitialBalances map[string]decimal.Decimal
	// PricesUSD prices simulated fills. Pairs missing a price fall back
	// to a flat 0.5% haircut on the input amount.
	PricesUSD map[string]decimal.Decimal

	// ConfirmAfter is how long a receipt stays pending before flipping to
	// success. Zero means the 2s default; negative confirms immediately.
	ConfirmAfter time.Duration
	// BlockTime paces confirmation counting. Zero means 2s.
	BlockTime time.Duration
	// ReceiptTimeout bounds WaitForReceipt polling. Zero means 60s.
	ReceiptTimeout time.Duration

	// Offline builds a client that reports disconnected and refuses to
	// settle anything.
	Offline bool
}

func (c Config) withDefaults() Config {
	if c.NetworkName == "" {
		c.NetworkName = defaultNetworkName
	}
	if c.ChainID == 0 {
		c.ChainID = defaultChainID
	}
	if c.RPCURL == "" {
		c.RPCURL = defaultRPCURL
	}
	if c.ExplorerURL == "" {
		c.ExplorerURL = ExplorerBaseURL("rise-testnet")
	}
	if c.AccountAddress == "" {
		c.AccountAddress = defaultAccountAddress
	}
	if c.InitialBalances == nil {
		c.InitialBalances = defaultBalances()
	}
	if c.PricesUSD == nil {
		c.PricesUSD = defaultPrices()
	}
	if c.ConfirmAfter == 0 {
		c.ConfirmAfter = defaultConfirmAfter
	}
	if c.BlockTime <= 0 {
		c.BlockTime = defaultBlockTime
	}
	if c.ReceiptTimeout <= 0 {
		c.ReceiptTimeout = defaultReceiptTimeout
	}
	return c
}

// SimulatedClient settles transactions against an in-memory chain. It is
// safe for concurrent use.
type SimulatedClient struct {
	cfg Config

	mu       sync.Mutex
	nonce    int64
	balances map[string]decimal.Decimal
	receipts map[string]*receiptRecord
}

type receiptRecord struct {
	submittedAt time.Time
	blockNumber int64
	gasUsed     int64
}

var _ Client = (*SimulatedClient)(nil)

// NewSimulatedClient builds a simulated chain client. The config maps are
// copied, so callers can reuse theirs.
func NewSimulatedClient(cfg Config) *SimulatedClient {
	cfg = cfg.withDefaults()

	balances := make(map[string]decimal.Decimal, len(cfg.InitialBalances))
	for token, amount := range cfg.InitialBalances {
		balances[strings.ToUpper(token)] = amount
	}
	prices := make(map[string]decimal.Decimal, len(cfg.PricesUSD))
	for token, price := range cfg.PricesUSD {
		prices[strings.ToUpper(token)] = price
	}
	cfg.PricesUSD = prices

	execLog.Info().
		Str("network", cfg.NetworkName).
		Int64("chain_id", cfg.ChainID).
		Str("rpc_url", cfg.RPCURL).
		Bool("offline", cfg.Offline).
		Msg("simulated chain client ready")

	return &SimulatedClient{
		cfg:      cfg,
		balances: balances,
		receipts: make(map[string]*receiptRecord),
	}
}

// IsConnected reports whether the client can reach its chain.
func (c *SimulatedClient) IsConnected() bool {
	return !c.cfg.Offline
}

// Network returns the configured network name.
func (c *SimulatedClient) Network() string {
	return c.cfg.NetworkName
}

// RPCURL returns the configured RPC endpoint.
func (c *SimulatedClient) RPCURL() string {
	return c.cfg.RPCURL
}

// ChainID returns the configured chain id.
func (c *SimulatedClient) ChainID() int64 {
	return c.cfg.ChainID
}

// AccountAddress returns the address transactions settle from.
func (c *SimulatedClient) AccountAddress() string {
	return c.cfg.AccountAddress
}

// Balance reports the account's current balance for a token. Unknown
// tokens report zero.
func (c *SimulatedClient) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if !c.IsConnected() {
		return decimal.Zero, ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[strings.ToUpper(token)], nil
}

// ExecuteSwap settles a single-step swap. ETH and WETH inputs reserve gas
// and a small safety margin out of the balance before filling.
func (c *SimulatedClient) ExecuteSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*SwapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	fromToken = strings.ToUpper(fromToken)
	toToken = strings.ToUpper(toToken)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fromToken == "RISE" && toToken == "USDT" {
		return nil, &PairNotSupportedError{FromToken: fromToken, ToToken: toToken}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	balance := c.balances[fromToken]
	gasUsed := int64(gasTokenSwap)
	needed := amount
	if fromToken == "ETH" || fromToken == "WETH" {
		gasCost := swapGasPriceGwei.Mul(gweiInETH).Mul(decimal.NewFromInt(swapGasLimit))
		needed = amount.Add(gasCost).Add(safetyMargin)
		gasUsed = gasEthSwap
	}
	if balance.LessThan(needed) {
		execLog.Warn().
			Str("token", fromToken).
			Str("balance", balance.String()).
			Str("needed", needed.String()).
			Msg("swap rejected, balance too low")
		return nil, &InsufficientBalanceError{Token: fromToken, Balance: balance, Needed: needed}
	}

	out := c.simulatedFill(fromToken, toToken, amount)
	hash, rec := c.submitLocked("swap", swapDetail(fromToken, toToken, amount), gasUsed)
	c.balances[fromToken] = balance.Sub(amount)
	c.balances[toToken] = c.balances[toToken].Add(out)

	status, _ := c.statusOf(rec)
	execLog.Info().
		Str("from", fromToken).
		Str("to", toToken).
		Str("amount", amount.String()).
		Str("tx_hash", hash).
		Str("status", status).
		Msg("swap settled")

	return &SwapResult{
		TxHash:      hash,
		FromToken:   fromToken,
		ToToken:     toToken,
		AmountIn:    amount,
		AmountOut:   out,
		GasUsed:     gasUsed,
		DEX:         "rise_dex",
		Status:      status,
		ExplorerURL: c.txURL(hash),
		Steps:       []string{"swap"},
	}, nil
}

// ExecuteTwoStepSwap settles a token-to-token swap as an ERC20 approval for
// the RISE DEX router followed by the swap. The swap is only submitted once
// the approval receipt confirms.
func (c *SimulatedClient) ExecuteTwoStepSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*SwapResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	fromToken = strings.ToUpper(fromToken)
	toToken = strings.ToUpper(toToken)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if fromToken == "RISE" && toToken == "USDT" {
		return nil, &PairNotSupportedError{FromToken: fromToken, ToToken: toToken}
	}

	router := routerAddresses["rise_dex"]

	c.mu.Lock()
	balance := c.balances[fromToken]
	if balance.LessThan(amount) {
		c.mu.Unlock()
		execLog.Warn().
			Str("token", fromToken).
			Str("balance", balance.String()).
			Str("needed", amount.String()).
			Msg("two-step swap rejected, balance too low")
		return nil, &InsufficientBalanceError{Token: fromToken, Balance: balance, Needed: amount}
	}
	approvalDetail := fmt.Sprintf("%s_%s_%s", fromToken, router.Hex(), toBaseUnits(fromToken, amount))
	approvalHash, _ := c.submitLocked("approve", approvalDetail, gasApproval)
	c.mu.Unlock()

	if _, err := c.WaitForReceipt(ctx, approvalHash); err != nil {
		return nil, fmt.Errorf("approval not confirmed: %w", err)
	}

	c.mu.Lock()
	balance = c.balances[fromToken]
	out := c.simulatedFill(fromToken, toToken, amount)
	swapHash, swapRec := c.submitLocked("swap", swapDetail(fromToken, toToken, amount), gasTokenSwap)
	c.balances[fromToken] = balance.Sub(amount)
	c.balances[toToken] = c.balances[toToken].Add(out)
	status, _ := c.statusOf(swapRec)
	c.mu.Unlock()

	execLog.Info().
		Str("from", fromToken).
		Str("to", toToken).
		Str("amount", amount.String()).
		Str("approval_tx_hash", approvalHash).
		Str("tx_hash", swapHash).
		Str("status", status).
		Msg("two-step swap settled")

	return &SwapResult{
		TxHash:              swapHash,
		FromToken:           fromToken,
		ToToken:             toToken,
		AmountIn:            amount,
		AmountOut:           out,
		GasUsed:             gasApproval + gasTokenSwap,
		DEX:                 "rise_dex",
		Status:              status,
		ExplorerURL:         c.txURL(swapHash),
		ApprovalTxHash:      approvalHash,
		ApprovalExplorerURL: c.txURL(approvalHash),
		Steps:               []string{"approval", "swap"},
	}, nil
}

// ExecuteTransfer sends tokens to an external address. ETH moves natively;
// USDT, USDC and RISE move as ERC20 transfers.
func (c *SimulatedClient) ExecuteTransfer(ctx context.Context, token string, amount decimal.Decimal, receiver string) (*TransferResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	token = strings.ToUpper(token)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !common.IsHexAddress(receiver) {
		return nil, &InvalidReceiverError{Address: receiver}
	}
	checksum := common.HexToAddress(receiver).Hex()

	c.mu.Lock()
	defer c.mu.Unlock()

	balance := c.balances[token]
	gasUsed := int64(gasTokenTransfer)
	needed := amount
	if token == "ETH" {
		gasCost := transferGasPriceGwei.Mul(gweiInETH).Mul(decimal.NewFromInt(gasEthTransfer))
		needed = amount.Add(gasCost)
		gasUsed = gasEthTransfer
	} else if _, ok := transferableTokens[token]; !ok {
		return nil, &UnsupportedTransferTokenError{Token: token}
	}
	if balance.LessThan(needed) {
		execLog.Warn().
			Str("token", token).
			Str("balance", balance.String()).
			Str("needed", needed.String()).
			Msg("transfer rejected, balance too low")
		return nil, &InsufficientBalanceError{Token: token, Balance: balance, Needed: needed}
	}

	detail := fmt.Sprintf("%s_%s_%s", token, checksum, toBaseUnits(token, amount))
	hash, rec := c.submitLocked("transfer", detail, gasUsed)
	c.balances[token] = balance.Sub(amount)

	status, _ := c.statusOf(rec)
	execLog.Info().
		Str("token", token).
		Str("amount", amount.String()).
		Str("receiver", receiver).
		Str("tx_hash", hash).
		Str("status", status).
		Msg("transfer settled")

	return &TransferResult{
		TxHash:      hash,
		Token:       token,
		Amount:      amount,
		Receiver:    receiver,
		GasUsed:     gasUsed,
		Status:      status,
		ExplorerURL: c.txURL(hash),
	}, nil
}

// TransactionStatus reports the receipt state for a hash. Hashes the chain
// has not seen report as pending with zero confirmations.
func (c *SimulatedClient) TransactionStatus(ctx context.Context, txHash string) (*TxStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	c.mu.Lock()
	rec, ok := c.receipts[txHash]
	c.mu.Unlock()
	if !ok {
		return &TxStatus{Status: StatusPending}, nil
	}

	status, confirmations := c.statusOf(rec)
	return &TxStatus{
		Status:        status,
		BlockNumber:   rec.blockNumber,
		GasUsed:       rec.gasUsed,
		Confirmations: confirmations,
		ExplorerURL:   c.txURL(txHash),
	}, nil
}

// WaitForReceipt polls TransactionStatus until the transaction leaves the
// pending state or the receipt timeout elapses.
func (c *SimulatedClient) WaitForReceipt(ctx context.Context, txHash string) (*TxStatus, error) {
	operation := func() (*TxStatus, error) {
		status, err := c.TransactionStatus(ctx, txHash)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if status.Status == StatusPending {
			return nil, fmt.Errorf("transaction %s still pending", txHash)
		}
		return status, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(c.cfg.ReceiptTimeout))
}

// simulatedFill estimates what the DEX pays out. With both sides priced it
// converts through USD and applies the 0.3% venue fee, otherwise it falls
// back to a flat 0.5% haircut on the input amount.
func (c *SimulatedClient) simulatedFill(fromToken, toToken string, amount decimal.Decimal) decimal.Decimal {
	priceFrom, okFrom := c.cfg.PricesUSD[fromToken]
	priceTo, okTo := c.cfg.PricesUSD[toToken]
	if !okFrom || !okTo || !priceTo.IsPositive() {
		return amount.Mul(fallbackFillRatio)
	}
	return amount.Mul(priceFrom).Div(priceTo).Mul(swapFeeFactor)
}

// submitLocked mints a transaction: it bumps the nonce, derives the
// deterministic hash, and records the receipt. Callers hold c.mu.
func (c *SimulatedClient) submitLocked(kind, detail string, gasUsed int64) (string, *receiptRecord) {
	c.nonce++
	preimage := fmt.Sprintf("%s_%s_%s_%d_%d", kind, c.cfg.AccountAddress, detail, c.cfg.ChainID, c.nonce)
	sum := sha256.Sum256([]byte(preimage))
	hash := common.BytesToHash(sum[:]).Hex()

	rec := &receiptRecord{
		submittedAt: time.Now(),
		blockNumber: baseBlockNumber + c.nonce,
		gasUsed:     gasUsed,
	}
	c.receipts[hash] = rec
	return hash, rec
}

func (c *SimulatedClient) statusOf(rec *receiptRecord) (string, int64) {
	elapsed := time.Since(rec.submittedAt)
	if elapsed < c.cfg.ConfirmAfter {
		return StatusPending, 0
	}
	confirmations := int64(elapsed / c.cfg.BlockTime)
	if confirmations < 1 {
		confirmations = 1
	}
	return StatusSuccess, confirmations
}

func (c *SimulatedClient) txURL(hash string) string {
	return c.cfg.ExplorerURL + "/tx/" + hash
}

func swapDetail(fromToken, toToken string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s_%s_%s", fromToken, toToken, toBaseUnits(fromToken, amount))
}
