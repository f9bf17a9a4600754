// Package executor is the transaction side of the portal: it takes the swap
// and transfer orders the chat layer produces and settles them against a
// simulated RISE testnet chain. The simulation keeps an in-memory account
// ledger, mints deterministic transaction hashes, and replays the gas and
// receipt behavior observed on the real network, so the rest of the portal
// can be exercised end to end without an RPC endpoint. The Client interface
// is what the chat layer programs against; a live implementation can slot in
// behind it later.
package executor

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var execLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	execLog = zerolog.New(out).With().Timestamp().Str("component", "executor").Logger()
}

// Transaction lifecycle states reported in results and status lookups.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Client executes settlement operations for the portal. All methods honor
// context cancellation; amounts are token units, not base units.
type Client interface {
	// ExecuteSwap settles a single-step swap. The caller is expected to use
	// it for ETH and WETH inputs, which need no ERC20 approval.
	ExecuteSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*SwapResult, error)

	// ExecuteTwoStepSwap settles a token-to-token swap as an approval
	// transaction followed by the swap itself.
	ExecuteTwoStepSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*SwapResult, error)

	// ExecuteTransfer sends tokens to an external address. ETH moves as a
	// native transfer, everything else as an ERC20 transfer.
	ExecuteTransfer(ctx context.Context, token string, amount decimal.Decimal, receiver string) (*TransferResult, error)

	// TransactionStatus reports the current state of a submitted
	// transaction. Unknown hashes report as pending with no confirmations.
	TransactionStatus(ctx context.Context, txHash string) (*TxStatus, error)

	// Balance reports the account's balance for one token.
	Balance(ctx context.Context, token string) (decimal.Decimal, error)

	IsConnected() bool
	Network() string
	RPCURL() string
}

// SwapResult describes a settled swap. For two-step swaps TxHash is the swap
// step and the Approval fields carry the preceding approval transaction.
type SwapResult struct {
	TxHash      string
	FromToken   string
	ToToken     string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	GasUsed     int64
	DEX         string
	Status      string
	ExplorerURL string

	ApprovalTxHash      string
	ApprovalExplorerURL string
	// Steps lists the transactions taken in order, "swap" alone or
	// "approval" then "swap".
	Steps []string
}

// TransferResult describes a settled transfer.
type TransferResult struct {
	TxHash      string
	Token       string
	Amount      decimal.Decimal
	Receiver    string
	GasUsed     int64
	Status      string
	ExplorerURL string
}

// TxStatus is a point-in-time receipt snapshot for a transaction hash.
type TxStatus struct {
	Status        string
	BlockNumber   int64
	GasUsed       int64
	Confirmations int64
	ExplorerURL   string
}
