package models

// ChatRequest - POST /api/chat body
type ChatRequest struct {
	Message     string `json:"message"`
	UserAddress string `json:"user_address,omitempty"` // optional, enables wallet-backed flows
	Signature   string `json:"signature,omitempty"`
}

// ChatPayload is the conversational reply produced by the chat agent. Type
// discriminates the payload: "swap_success", "transfer_success", "swap_error",
// "error", "help", "token_info" or "general".
type ChatPayload struct {
	Type                string        `json:"type"`
	Message             string        `json:"message"`
	ErrorCode           string        `json:"error_code,omitempty"`
	CanRetry            bool          `json:"can_retry"`
	TxHash              string        `json:"tx_hash,omitempty"`
	ExplorerURL         string        `json:"explorer_url,omitempty"`
	ShowExplorerLink    bool          `json:"show_explorer_link,omitempty"`
	RouteDetails        *RouteDetails `json:"route_details,omitempty"`
	ApprovalTxHash      string        `json:"approval_tx_hash,omitempty"`
	ApprovalExplorerURL string        `json:"approval_explorer_url,omitempty"`
	Steps               []string      `json:"steps,omitempty"` // e.g. ["approval", "swap"]
	Timestamp           string        `json:"timestamp,omitempty"` // set on error payloads
}

// ChatResponse - POST /api/chat envelope
type ChatResponse struct {
	Success   bool         `json:"success"`
	Response  *ChatPayload `json:"response,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp string       `json:"timestamp"` // RFC 3339
}

// AuthorizeWalletRequest - POST /api/authorize_wallet body
type AuthorizeWalletRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"` // the signed message
}

// AuthorizeWalletResponse - POST /api/authorize_wallet result
type AuthorizeWalletResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyAddressRequest - POST /api/verify_address body
type VerifyAddressRequest struct {
	Address string `json:"address"`
}

// VerifyAddressResponse - POST /api/verify_address result. RiskScore is the
// average across responsive intel sources, capped at 100; RiskLevel is one of
// "low", "medium", "high", "critical", "invalid" or "error".
type VerifyAddressResponse struct {
	Address         string   `json:"address"`
	IsSafe          bool     `json:"is_safe"`
	RiskScore       float64  `json:"risk_score"`
	RiskLevel       string   `json:"risk_level"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	SourcesChecked  []string `json:"sources_checked"`
	Confidence      float64  `json:"confidence"` // responsive sources / total sources
	FromCache       bool     `json:"from_cache,omitempty"`
	Timestamp       string   `json:"timestamp"`
}

// RouterStatus describes the routing engine for the status endpoint.
type RouterStatus struct {
	Status          string   `json:"status"`
	Pools           int      `json:"pools"`
	SupportedTokens []string `json:"supported_tokens"`
}

// ExecutorStatus describes the transaction executor for the status endpoint.
type ExecutorStatus struct {
	Status  string `json:"status"` // "connected" or "disconnected"
	Network string `json:"network"`
	RPCURL  string `json:"rpc_url"`
}

// AgentsStatus groups per-component snapshots.
type AgentsStatus struct {
	Router   RouterStatus   `json:"swap_router"`
	Executor ExecutorStatus `json:"executor"`
}

// AgentsStatusResponse - GET /api/agents/status envelope
type AgentsStatusResponse struct {
	Success bool         `json:"success"`
	Agents  AgentsStatus `json:"agents"`
	Error   string       `json:"error,omitempty"`
}
