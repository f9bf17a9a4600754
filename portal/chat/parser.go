package chat

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// SwapRequest is the outcome of scanning a message for swap intent.
type SwapRequest struct {
	IsSwapRequest   bool
	FromToken       string
	ToToken         string
	Amount          decimal.Decimal
	OriginalMessage string
}

// TransferRequest is the outcome of scanning a message for transfer intent.
type TransferRequest struct {
	IsTransferRequest bool
	Amount            decimal.Decimal
	Token             string
	Receiver          string
	OriginalMessage   string
}

var amountPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// tokenVocabulary spots token mentions anywhere in a message. Detection is
// ordered so the two-token fallback picks them up in vocabulary order.
var tokenVocabulary = []struct {
	pattern *regexp.Regexp
	token   string
}{
	{regexp.MustCompile(`\b(?:eth|ethereum)\b`), "ETH"},
	{regexp.MustCompile(`\b(?:weth|wrapped eth)\b`), "WETH"},
	{regexp.MustCompile(`\b(?:usdt|tether)\b`), "USDT"},
	{regexp.MustCompile(`\b(?:usdc|usd coin)\b`), "USDC"},
	{regexp.MustCompile(`\b(?:dai|makerdao)\b`), "DAI"},
	{regexp.MustCompile(`\b(?:rise|rise token)\b`), "RISE"},
}

// swapPhrasePatterns capture the "from" and "to" sides of a swap phrase,
// English and Turkish. The first matching pattern wins. The last pattern is
// the mixed "<amount> <token> to <token>" form and captures three groups.
var swapPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(.+?)\s+(?:mi|yi|i)\s+(.+?)\s+(?:yap|yapmak|çevir|swap)`),
	regexp.MustCompile(`(.+?)\s+to\s+(.+)`),
	regexp.MustCompile(`(.+?)\s+den\s+(.+?)\s+ya`),
	regexp.MustCompile(`swap\s+(.+?)\s+(?:to|for)\s+(.+)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-zA-Z]+)\s+(?:to|mi|yi)\s+([a-zA-Z]+)`),
}

// pairVocabulary resolves the captured phrase sides to canonical symbols by
// substring, in order, last hit winning. A bare "eth" routes as WETH here:
// the router trades the wrapped token.
var pairVocabulary = []struct {
	needle    string
	canonical string
}{
	{"usdt", "USDT"},
	{"usdc", "USDC"},
	{"eth", "WETH"},
	{"weth", "WETH"},
	{"dai", "DAI"},
	{"rise", "RISE"},
}

// ParseSwapRequest extracts a swap order from free-form text. The first
// number found is the amount, defaulting to 1; tokens come from the swap
// phrase when one matches, otherwise from the first two vocabulary hits.
func ParseSwapRequest(message string) SwapRequest {
	amount := decimal.NewFromInt(1)
	if m := amountPattern.FindStringSubmatch(message); m != nil {
		if parsed, err := decimal.NewFromString(m[1]); err == nil {
			amount = parsed
		}
	}

	var found []string
	for _, entry := range tokenVocabulary {
		if entry.pattern.MatchString(message) {
			found = append(found, entry.token)
		}
	}

	var fromToken, toToken string
	for _, pattern := range swapPhrasePatterns {
		m := pattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}

		var fromText, toText string
		if len(m) == 4 {
			fromText, toText = m[2], m[3]
		} else {
			fromText, toText = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		}
		fromText = strings.ToLower(fromText)
		toText = strings.ToLower(toText)

		for _, entry := range pairVocabulary {
			if strings.Contains(fromText, entry.needle) {
				fromToken = entry.canonical
			}
			if strings.Contains(toText, entry.needle) {
				toToken = entry.canonical
			}
		}
		break
	}

	if fromToken == "" && toToken == "" && len(found) >= 2 {
		fromToken, toToken = found[0], found[1]
	}

	return SwapRequest{
		IsSwapRequest:   fromToken != "" && toToken != "",
		FromToken:       fromToken,
		ToToken:         toToken,
		Amount:          amount,
		OriginalMessage: message,
	}
}

// transferPhrasePatterns match "send"/"transfer"/"gönder" orders against the
// lowercased message, so captured receiver addresses come out lowercase.
var transferPhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`send\s+(\d+(?:\.\d+)?)\s+(\w+)\s+(0x[a-fA-F0-9]{40})`),
	regexp.MustCompile(`transfer\s+(\d+(?:\.\d+)?)\s+(\w+)\s+to\s+(0x[a-fA-F0-9]{40})`),
	regexp.MustCompile(`gönder\s+(\d+(?:\.\d+)?)\s+(\w+)\s+(0x[a-fA-F0-9]{40})`),
}

// ParseTransferRequest extracts a transfer order from free-form text.
// Unlike swaps, a bare "eth" stays ETH: transfers move the native coin.
func ParseTransferRequest(message string) TransferRequest {
	lower := strings.ToLower(message)
	for _, pattern := range transferPhrasePatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		amount, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}
		return TransferRequest{
			IsTransferRequest: true,
			Amount:            amount,
			Token:             strings.ToUpper(m[2]),
			Receiver:          m[3],
			OriginalMessage:   message,
		}
	}
	return TransferRequest{Amount: decimal.Zero, OriginalMessage: message}
}
