package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/riseport-labs/rise-swap-hub/portal/chat"
	"github.com/riseport-labs/rise-swap-hub/portal/models"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
	"github.com/riseport-labs/rise-swap-hub/portal/threatintel"
	"github.com/riseport-labs/rise-swap-hub/portal/wallet"
)

// Services groups the portal components the API serves. All fields are
// required except DemoPrivateKey.
type Services struct {
	Finder  *router.Finder
	Agent   *chat.Agent
	Wallets *wallet.Manager
	Intel   *threatintel.Detector

	// DemoPrivateKey, when set, is the shared key the chat endpoint
	// connects on behalf of a browser wallet that completed the
	// authorization handshake. The demo deployment funds one account and
	// lets every authorized visitor drive it.
	DemoPrivateKey string
}

// authorization is one recorded /api/authorize_wallet handshake.
type authorization struct {
	Address    string `json:"address"`
	Signature  string `json:"signature"`
	Authorized bool   `json:"authorized"`
	Timestamp  string `json:"timestamp"`
}

// apiHandler carries the services plus the in-memory authorization store.
// The store is process-local: restarting the server forgets every
// authorized address, the same as the simulated chain forgets balances.
type apiHandler struct {
	services *Services

	mu         sync.Mutex
	authorized map[string]authorization
}

func newAPIHandler(services *Services) *apiHandler {
	return &apiHandler{
		services:   services,
		authorized: make(map[string]authorization),
	}
}

func (h *apiHandler) register(mux *chi.Mux) {
	mux.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.chat)
		r.Post("/route", h.route)
		r.Post("/simulate", h.simulate)
		r.Get("/tokens", h.tokens)
		r.Post("/authorize_wallet", h.authorizeWallet)
		r.Get("/agents/status", h.agentsStatus)
		r.Post("/verify_address", h.verifyAddress)
	})
}

// chat handles POST /api/chat. An authorized user address gets the demo
// wallet connected before the message is processed, so swap and transfer
// intents have a session to settle against.
func (h *apiHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	if req.UserAddress != "" && h.isAuthorized(req.UserAddress) && h.services.DemoPrivateKey != "" {
		if _, err := h.services.Wallets.ConnectPrivateKey(r.Context(), h.services.DemoPrivateKey); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Wallet connection failed: %v", err))
			return
		}
	}

	payload := h.services.Agent.ProcessMessage(r.Context(), message, req.UserAddress)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Success:   true,
		Response:  payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// route handles POST /api/route. Failures keep the 200 status; the envelope's
// Success flag and error fields carry the outcome, which is what the chat
// frontend consumes.
func (h *apiHandler) route(w http.ResponseWriter, r *http.Request) {
	var req models.RouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp := h.services.Finder.QuoteResponse(req.FromToken, req.ToToken, decimal.NewFromFloat(req.Amount))
	writeJSON(w, http.StatusOK, resp)
}

// simulate handles POST /api/simulate.
func (h *apiHandler) simulate(w http.ResponseWriter, r *http.Request) {
	var req models.SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	resp := h.services.Finder.SimulateResponse(req.FromToken, req.ToToken, req.Amounts)
	writeJSON(w, http.StatusOK, resp)
}

// tokens handles GET /api/tokens.
func (h *apiHandler) tokens(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.services.Finder.Registry().TokensResponse())
}

// authorizeWallet handles POST /api/authorize_wallet. The signature is stored
// but not verified against the message; the demo deployment trusts the
// handshake and the executor only ever spends the shared demo account.
func (h *apiHandler) authorizeWallet(w http.ResponseWriter, r *http.Request) {
	var req models.AuthorizeWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Address == "" || req.Signature == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Address, signature and message are required")
		return
	}

	h.mu.Lock()
	h.authorized[req.Address] = authorization{
		Address:    req.Address,
		Signature:  req.Signature,
		Authorized: true,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	h.mu.Unlock()

	Logger.Info().Str("address", req.Address).Msg("wallet authorized")

	writeJSON(w, http.StatusOK, models.AuthorizeWalletResponse{
		Success: true,
		Message: "Wallet successfully authorized",
		Address: req.Address,
	})
}

// agentsStatus handles GET /api/agents/status.
func (h *apiHandler) agentsStatus(w http.ResponseWriter, r *http.Request) {
	registry := h.services.Finder.Registry()

	executorStatus := "disconnected"
	if h.services.Wallets.IsConnected() {
		executorStatus = "connected"
	}

	writeJSON(w, http.StatusOK, models.AgentsStatusResponse{
		Success: true,
		Agents: models.AgentsStatus{
			Router: models.RouterStatus{
				Status:          "active",
				Pools:           registry.PoolCount(),
				SupportedTokens: registry.SupportedTokens(),
			},
			Executor: models.ExecutorStatus{
				Status:  executorStatus,
				Network: h.services.Wallets.Network(),
				RPCURL:  h.services.Wallets.RPCURL(),
			},
		},
	})
}

// verifyAddress handles POST /api/verify_address. The verdict is always 200;
// malformed addresses come back as a max-risk "invalid" report rather than an
// HTTP error, so the frontend renders them the same way as any other verdict.
func (h *apiHandler) verifyAddress(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyAddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "Address is required")
		return
	}

	report := h.services.Intel.VerifyAddress(r.Context(), req.Address)

	writeJSON(w, http.StatusOK, models.VerifyAddressResponse{
		Address:         report.Address,
		IsSafe:          report.IsSafe,
		RiskScore:       report.OverallRiskScore,
		RiskLevel:       report.RiskLevel,
		Warnings:        report.Warnings,
		Recommendations: report.Recommendations,
		SourcesChecked:  report.SourcesChecked,
		Confidence:      report.Confidence,
		FromCache:       report.FromCache,
		Timestamp:       report.Timestamp,
	})
}

func (h *apiHandler) isAuthorized(address string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	auth, ok := h.authorized[address]
	return ok && auth.Authorized
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Error().Err(err).Msg("failed to encode response body")
	}
}

// writeError sends the bare {"error": ...} envelope the frontend expects,
// with the HTTP status carrying the class of failure.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
