package chat

import (
	"fmt"
	"strings"

	"github.com/riseport-labs/rise-swap-hub/portal/models"
)

const invalidReceiverMessage = "❌ **Invalid Receiver Address**\n\n🔗 Please provide a valid Ethereum address.\n\n💡 **Format:** 0x followed by 40 characters\n\n🔄 **Example:** send 0.1 eth 0x742d35Cc6634C0532925a3b8D5C2d3b5c5b5b5b5"

const helpMessage = `💱 **Welcome to AI Swap Assistant!**

🔄 **For swap operations:**
• "0.1 ETH to USDT"
• "5 ETH to USDC"
• "2 ETH to RISE"

💸 **For transfers:**
• "send 0.1 eth 0x742d35Cc6634C0532925a3b8D5C2d3b5c5b5b5b5"
• "transfer 0.001 usdt to 0x123..."
• "gönder 0.5 rise 0xabc..."

🪙 **Supported tokens:**
• ETH, USDT, USDC, RISE

⚡ **Real transactions on RISE Chain testnet!**

💡 **What would you like to do?**`

const tokenInfoMessage = `📊 **Token Information**

🪙 **Supported tokens:**
• ETH (Ethereum)
• USDT (Tether USD)
• USDC (USD Coin)
• RISE (RISE Token)

💱 **Swap examples:**
• "0.1 ETH to USDT"
• "50 USDC to ETH"
• "1 ETH to RISE"

⚡ **Real RISE Chain testnet transactions**

💡 **How else can I help you?**`

const greetingFormat = `👋 **Hello!**

💱 I'm your AI Swap Assistant. I can help you with token swap operations on RISE Chain testnet.

🔄 **For token swaps:**
• "0.1 ETH to USDT"
• "2 ETH to RISE"
• "5 USDC to ETH"

💡 **Type "help" for more information!**

---
*Your message: "%s"*`

var (
	helpKeywords      = []string{"yardım", "help", "nasıl", "ne yapabilirim", "how", "what can"}
	tokenInfoKeywords = []string{"token", "fiyat", "price", "balance", "bakiye", "info", "information"}
)

// handleGeneral answers messages with no swap or transfer intent: help and
// token-info keyword hits get their canned texts, everything else gets the
// greeting with the message echoed back.
func (a *Agent) handleGeneral(message string) *models.ChatPayload {
	lower := strings.ToLower(message)

	if containsAny(lower, helpKeywords) {
		return &models.ChatPayload{Type: "help", Message: helpMessage}
	}
	if containsAny(lower, tokenInfoKeywords) {
		return &models.ChatPayload{Type: "token_info", Message: tokenInfoMessage}
	}
	return &models.ChatPayload{Type: "general", Message: fmt.Sprintf(greetingFormat, message)}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
