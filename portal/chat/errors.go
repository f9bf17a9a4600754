package chat

import (
	"strings"
	"time"

	"github.com/riseport-labs/rise-swap-hub/portal/models"
)

// ErrorCode identifies an entry in the user-facing error catalog.
type ErrorCode string

const (
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodeNetworkError        ErrorCode = "NETWORK_ERROR"
	CodeSlippageTooHigh     ErrorCode = "SLIPPAGE_TOO_HIGH"
	CodeUnsupportedToken    ErrorCode = "UNSUPPORTED_TOKEN"
	CodeGasEstimationFailed ErrorCode = "GAS_ESTIMATION_FAILED"
	CodeWalletNotConnected  ErrorCode = "WALLET_NOT_CONNECTED"
	CodeTransactionFailed   ErrorCode = "TRANSACTION_FAILED"
	CodeRouteNotFound       ErrorCode = "ROUTE_NOT_FOUND"
	CodeApprovalRequired    ErrorCode = "APPROVAL_REQUIRED"
	CodePriceImpactHigh     ErrorCode = "PRICE_IMPACT_HIGH"
	CodeTimeoutError        ErrorCode = "TIMEOUT_ERROR"
	CodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	CodeGenericError        ErrorCode = "GENERIC_ERROR"

	// CodeUnsupportedPair is used by the dedicated RISE/USDT responses and
	// has no catalog entry of its own.
	CodeUnsupportedPair ErrorCode = "UNSUPPORTED_PAIR"
)

type catalogEntry struct {
	message string
	retry   bool
}

// errorCatalog holds the canned markdown shown for each error code.
// WALLET_NOT_CONNECTED is the only non-retryable entry: retrying without a
// wallet cannot succeed.
var errorCatalog = map[ErrorCode]catalogEntry{
	CodeInsufficientBalance: {
		message: "❌ **Insufficient Balance**\n\n💰 Your wallet doesn't have enough tokens for this swap.\n\n💡 **Solutions:**\n• Check your token balance\n• Try a smaller amount\n• Add more funds to your wallet",
		retry:   true,
	},
	CodeNetworkError: {
		message: "❌ **Network Connection Error**\n\n🌐 Unable to connect to the blockchain network.\n\n💡 **Solutions:**\n• Check your internet connection\n• Switch to a different RPC endpoint\n• Try again in a few moments",
		retry:   true,
	},
	CodeSlippageTooHigh: {
		message: "❌ **High Slippage Detected**\n\n📈 Price impact is too high for this trade.\n\n💡 **Solutions:**\n• Try a smaller amount\n• Increase slippage tolerance\n• Wait for better market conditions",
		retry:   true,
	},
	CodeUnsupportedToken: {
		message: "❌ **Unsupported Token**\n\n🪙 One or more tokens are not supported.\n\n💡 **Supported tokens:** ETH, USDC, USDT, RISE\n\n🔄 **Try:** \"0.1 ETH to USDC\" or \"5 USDT to RISE\"",
		retry:   true,
	},
	CodeGasEstimationFailed: {
		message: "❌ **Gas Estimation Failed**\n\n⛽ Unable to estimate gas costs for this transaction.\n\n💡 **Solutions:**\n• Check token balances and allowances\n• Verify contract addresses\n• Try again with a different amount",
		retry:   true,
	},
	CodeWalletNotConnected: {
		message: "❌ **Wallet Not Connected**\n\n👛 Please connect your wallet first.\n\n💡 **Steps:**\n• Click \"Connect Wallet\" button\n• Choose your preferred wallet\n• Authorize the connection",
		retry:   false,
	},
	CodeTransactionFailed: {
		message: "❌ **Transaction Failed**\n\n🔄 The blockchain transaction was rejected.\n\n💡 **Common causes:**\n• Insufficient gas\n• Token approval needed\n• Network congestion\n• Price changed during execution",
		retry:   true,
	},
	CodeRouteNotFound: {
		message: "❌ **No Trading Route Found**\n\n🛣️ No available path for this token pair.\n\n💡 **Solutions:**\n• Try different token pairs\n• Check if tokens exist on this network\n• Use intermediate tokens (ETH/USDC)",
		retry:   true,
	},
	CodeApprovalRequired: {
		message: "⚠️ **Token Approval Required**\n\n🔐 You need to approve token spending first.\n\n💡 **Next steps:**\n• Approve token spending\n• Wait for confirmation\n• Try the swap again",
		retry:   true,
	},
	CodePriceImpactHigh: {
		message: "⚠️ **High Price Impact Warning**\n\n📊 This trade will significantly affect token price.\n\n💡 **Consider:**\n• Reducing trade size\n• Splitting into smaller trades\n• Waiting for better liquidity",
		retry:   true,
	},
	CodeTimeoutError: {
		message: "❌ **Transaction Timeout**\n\n⏱️ Transaction took too long to process.\n\n💡 **Solutions:**\n• Check transaction status on explorer\n• Increase gas price for faster processing\n• Try again with higher gas limit",
		retry:   true,
	},
	CodeInvalidAmount: {
		message: "❌ **Invalid Amount**\n\n💯 Please enter a valid positive amount.\n\n💡 **Examples:**\n• \"0.1 ETH to USDC\"\n• \"50 USDT to ETH\"\n• \"1.5 RISE to USDC\"",
		retry:   true,
	},
	CodeGenericError: {
		message: "❌ **Something Went Wrong**\n\n🔧 An unexpected error occurred.\n\n💡 **Solutions:**\n• Try again in a few moments\n• Check your wallet connection\n• Contact support if problem persists",
		retry:   true,
	},
}

const retryFooter = "\n\n🔄 **Click \"Try Again\" to retry this operation**"

// ClassifyError maps an arbitrary error message onto the catalog by
// substring. The checks run in a fixed order and the first hit wins, so
// "insufficient balance for gas" classifies as a balance problem, not a gas
// problem.
func ClassifyError(message string) ErrorCode {
	lower := strings.ToLower(message)
	contains := func(terms ...string) bool {
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("insufficient", "balance", "not enough"):
		return CodeInsufficientBalance
	case contains("network", "connection", "rpc", "timeout"):
		return CodeNetworkError
	case contains("slippage", "price impact", "high impact"):
		return CodeSlippageTooHigh
	case contains("unsupported", "invalid token", "token not found"):
		return CodeUnsupportedToken
	case contains("gas", "estimation failed", "gas limit"):
		return CodeGasEstimationFailed
	case contains("wallet", "not connected", "no wallet"):
		return CodeWalletNotConnected
	case contains("transaction failed", "tx failed", "reverted"):
		return CodeTransactionFailed
	case contains("route", "path", "no route found"):
		return CodeRouteNotFound
	case contains("approval", "approve", "allowance"):
		return CodeApprovalRequired
	case contains("amount", "invalid amount", "zero amount"):
		return CodeInvalidAmount
	default:
		return CodeGenericError
	}
}

// errorPayload shapes a swap_error payload from the catalog. customMessage
// replaces the canned text, txHash attaches the failed transaction and its
// explorer link. Unknown codes fall back to the generic entry.
func (a *Agent) errorPayload(code ErrorCode, customMessage, txHash string) *models.ChatPayload {
	entry, ok := errorCatalog[code]
	if !ok {
		code = CodeGenericError
		entry = errorCatalog[CodeGenericError]
	}

	message := entry.message
	if customMessage != "" {
		message = customMessage
	}
	if entry.retry {
		message += retryFooter
	}

	payload := &models.ChatPayload{
		Type:      "swap_error",
		ErrorCode: string(code),
		Message:   message,
		CanRetry:  entry.retry,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if txHash != "" {
		payload.TxHash = txHash
		payload.ExplorerURL = a.explorerURL + "/tx/" + txHash
	}
	return payload
}

// pairNotSupportedPayload answers the RISE/USDT gap. The two-step flow gets
// the final "not supported" answer; the direct flow suggests multi-hop
// alternatives and invites a retry.
func (a *Agent) pairNotSupportedPayload(twoStep bool) *models.ChatPayload {
	if twoStep {
		return &models.ChatPayload{
			Type:      "error",
			ErrorCode: string(CodeUnsupportedPair),
			Message:   "❌ **RISE → USDT Not Available**\n\n🚫 **Issue:** This swap pair is not supported\n\n💡 **Available Swaps:**\n• ETH → USDC/USDT/RISE\n• USDT → USDC\n\n🔄 **Try:** Use ETH to get RISE tokens, or swap USDT to USDC",
			CanRetry:  false,
			Timestamp: time.Now().Format(time.RFC3339),
		}
	}
	return &models.ChatPayload{
		Type:      "error",
		ErrorCode: string(CodeUnsupportedPair),
		Message:   "❌ **RISE → USDT Not Available**\n\n🚫 **Issue:** This trading pair is not supported on the current DEX\n\n💡 **Alternative Routes:**\n• RISE → ETH → USDT (2-step)\n• RISE → USDC → USDT (2-step)\n\n🔄 **Try:** Different token pairs with direct liquidity",
		CanRetry:  true,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
