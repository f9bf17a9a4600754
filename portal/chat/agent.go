// Package chat turns free-form user messages into swap and transfer
// operations. It parses intent with the portal's small regex vocabulary,
// drives the route finder and the transaction executor, and shapes every
// outcome, success or failure, into a markdown chat payload the frontend
// renders directly. Errors are mapped onto a fixed catalog of user-facing
// messages with retry semantics.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/riseport-labs/rise-swap-hub/portal/executor"
	"github.com/riseport-labs/rise-swap-hub/portal/models"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
)

var chatLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	chatLog = zerolog.New(out).With().Timestamp().Str("component", "chat").Logger()
}

const defaultHistoryLimit = 100

// transferTokens is the allow-list the conversation layer checks before
// handing a transfer to the executor. DAI parses but is not transferable.
var transferTokens = map[string]struct{}{
	"ETH":  {},
	"WETH": {},
	"USDT": {},
	"USDC": {},
	"RISE": {},
}

// Config wires an Agent to its collaborators.
type Config struct {
	Finder   *router.Finder
	Executor executor.Client

	// ExplorerURL is the block explorer root used when attaching failed
	// transaction links. Empty means the RISE testnet explorer.
	ExplorerURL string
	// HistoryLimit bounds the in-memory conversation history. Zero means
	// 100 entries; the oldest entries fall off first.
	HistoryLimit int
}

// HistoryEntry is one recorded user message.
type HistoryEntry struct {
	Timestamp   time.Time
	UserMessage string
	UserAddress string
}

// Agent is the conversational front of the portal. It is safe for
// concurrent use; the history is the only mutable state.
type Agent struct {
	finder       *router.Finder
	executor     executor.Client
	explorerURL  string
	historyLimit int

	mu      sync.Mutex
	history []HistoryEntry
}

// NewAgent builds a chat agent over a route finder and an executor client.
func NewAgent(cfg Config) *Agent {
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = executor.ExplorerBaseURL("rise-testnet")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Agent{
		finder:       cfg.Finder,
		executor:     cfg.Executor,
		explorerURL:  cfg.ExplorerURL,
		historyLimit: cfg.HistoryLimit,
	}
}

// ProcessMessage records the message and answers it. Transfer phrasing is
// checked before swap phrasing, anything else falls through to the general
// responses.
func (a *Agent) ProcessMessage(ctx context.Context, message, userAddress string) *models.ChatPayload {
	a.record(message, userAddress)

	if transfer := ParseTransferRequest(message); transfer.IsTransferRequest {
		return a.handleTransfer(ctx, transfer)
	}
	if swap := ParseSwapRequest(message); swap.IsSwapRequest {
		return a.handleSwap(ctx, swap)
	}
	return a.handleGeneral(message)
}

// History returns a copy of the recorded conversation history, oldest
// first.
func (a *Agent) History() []HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]HistoryEntry, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) record(message, userAddress string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, HistoryEntry{
		Timestamp:   time.Now(),
		UserMessage: message,
		UserAddress: userAddress,
	})
	if len(a.history) > a.historyLimit {
		a.history = a.history[len(a.history)-a.historyLimit:]
	}
}

func (a *Agent) handleTransfer(ctx context.Context, req TransferRequest) *models.ChatPayload {
	if !req.Amount.IsPositive() {
		return a.errorPayload(CodeInvalidAmount, "", "")
	}
	if len(req.Receiver) != 42 || !strings.HasPrefix(req.Receiver, "0x") {
		return a.errorPayload(CodeGenericError, invalidReceiverMessage, "")
	}
	if _, ok := transferTokens[req.Token]; !ok {
		return a.errorPayload(CodeUnsupportedToken, "", "")
	}

	result, err := a.executor.ExecuteTransfer(ctx, req.Token, req.Amount, req.Receiver)
	if err != nil {
		chatLog.Warn().Err(err).Str("token", req.Token).Msg("transfer failed")
		return a.errorPayload(ClassifyError(err.Error()), "", "")
	}

	chatLog.Info().
		Str("token", req.Token).
		Str("amount", req.Amount.String()).
		Str("tx_hash", result.TxHash).
		Msg("transfer handled")

	message := fmt.Sprintf("✅ **Transfer Successful!**\n\n💸 **Sent:** %s %s\n\n📍 **To:** `%s`\n\n🔗 **Transaction Hash:** `%s`\n\n⛽ **Gas Used:** %d units",
		req.Amount, req.Token, req.Receiver, result.TxHash, result.GasUsed)

	return &models.ChatPayload{
		Type:             "transfer_success",
		Message:          message,
		TxHash:           result.TxHash,
		ExplorerURL:      result.ExplorerURL,
		ShowExplorerLink: true,
		CanRetry:         false,
	}
}

func (a *Agent) handleSwap(ctx context.Context, req SwapRequest) *models.ChatPayload {
	if req.FromToken == "" || req.ToToken == "" {
		return a.errorPayload(CodeUnsupportedToken, "", "")
	}
	if !req.Amount.IsPositive() {
		return a.errorPayload(CodeInvalidAmount, "", "")
	}

	quote := a.finder.QuoteResponse(req.FromToken, req.ToToken, req.Amount)
	if !quote.Success {
		custom := fmt.Sprintf("❌ **Route Finding Failed**\n\n🔍 **Error:** %s\n\n💡 **Supported tokens:** ETH, USDC, USDT, RISE\n\n🔄 **Try:** Different token pairs or amounts", quote.Error)
		return a.errorPayload(ClassifyError(quote.Error), custom, "")
	}
	details := quote.RouteDetails

	// ETH and WETH spend without an allowance; every other input token
	// needs the approval transaction first.
	needsApproval := req.FromToken != "ETH" && req.FromToken != "WETH"

	var result *executor.SwapResult
	var err error
	if needsApproval {
		result, err = a.executor.ExecuteTwoStepSwap(ctx, req.FromToken, req.ToToken, req.Amount)
	} else {
		result, err = a.executor.ExecuteSwap(ctx, req.FromToken, req.ToToken, req.Amount)
	}
	if err != nil {
		var pairErr *executor.PairNotSupportedError
		if errors.As(err, &pairErr) {
			return a.pairNotSupportedPayload(needsApproval)
		}
		chatLog.Warn().Err(err).
			Str("from", req.FromToken).
			Str("to", req.ToToken).
			Msg("swap execution failed")
		return a.errorPayload(ClassifyError(err.Error()), "", "")
	}

	chatLog.Info().
		Str("from", req.FromToken).
		Str("to", req.ToToken).
		Str("amount", req.Amount.String()).
		Str("tx_hash", result.TxHash).
		Bool("two_step", needsApproval).
		Msg("swap handled")

	route := strings.Join(details.Pools, " → ")
	var message string
	if needsApproval && result.ApprovalTxHash != "" {
		message = fmt.Sprintf("✅ **Two-Step Swap Successful!**\n\n💰 **Trade:** %s %s → %.4f %s\n\n🛣️ **Route:** %s\n\n🔐 **Step 1 - Approval:** `%s`\n🔄 **Step 2 - Swap:** `%s`\n\n⛽ **Total Gas Cost:** $%.2f",
			req.Amount, req.FromToken, details.EstimatedOutput, req.ToToken, route,
			result.ApprovalTxHash, result.TxHash, details.GasCostUSD)
	} else {
		message = fmt.Sprintf("✅ **Swap Successful!**\n\n💰 **Trade:** %s %s → %.4f %s\n\n🛣️ **Route:** %s\n\n⛽ **Gas Cost:** $%.2f\n\n🔗 **Transaction Hash:** `%s`",
			req.Amount, req.FromToken, details.EstimatedOutput, req.ToToken, route,
			details.GasCostUSD, result.TxHash)
	}

	return &models.ChatPayload{
		Type:                "swap_success",
		Message:             message,
		TxHash:              result.TxHash,
		ExplorerURL:         result.ExplorerURL,
		RouteDetails:        details,
		ShowExplorerLink:    true,
		CanRetry:            false,
		ApprovalTxHash:      result.ApprovalTxHash,
		ApprovalExplorerURL: result.ApprovalExplorerURL,
		Steps:               result.Steps,
	}
}
