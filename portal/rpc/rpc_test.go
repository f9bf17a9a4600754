package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/riseport-labs/rise-swap-hub/portal/chat"
	"github.com/riseport-labs/rise-swap-hub/portal/executor"
	"github.com/riseport-labs/rise-swap-hub/portal/models"
	"github.com/riseport-labs/rise-swap-hub/portal/router"
	"github.com/riseport-labs/rise-swap-hub/portal/threatintel"
	"github.com/riseport-labs/rise-swap-hub/portal/wallet"
)

const (
	demoPrivateKey = "0xf38c811b61dc42e9b2dfa664d2ae2302c4958b5ff6ab607186b70e76e86802a6"
	browserAddress = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

	cleanGoPlusBody = `{"code":1,"result":{}}`
	cleanScamDBBody = `{"result":[]}`
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testMarket() router.Market {
	return router.Market{
		Pools: []router.Pool{
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1000"), ReserveB: dec("2000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
			{Name: "WETH/RISE", TokenA: "WETH", TokenB: "RISE", ReserveA: dec("100"), ReserveB: dec("4000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
			{Name: "USDC/RISE", TokenA: "USDC", TokenB: "RISE", ReserveA: dec("50000"), ReserveB: dec("1000000"), FeePercent: dec("0.3"), Dex: "uniswap"},
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("800"), ReserveB: dec("1600000"), FeePercent: dec("0.25"), Dex: "sushiswap"},
			{Name: "RISE/USDC", TokenA: "RISE", TokenB: "USDC", ReserveA: dec("2000000"), ReserveB: dec("100000"), FeePercent: dec("0.25"), Dex: "sushiswap"},
			{Name: "WETH/USDC", TokenA: "WETH", TokenB: "USDC", ReserveA: dec("1200"), ReserveB: dec("2400000"), FeePercent: dec("0.1"), Dex: "1inch"},
			{Name: "RISE/WETH", TokenA: "RISE", TokenB: "WETH", ReserveA: dec("5000000"), ReserveB: dec("125"), FeePercent: dec("0.2"), Dex: "1inch"},
		},
		SupportedTokens: []string{"WETH", "ETH", "USDC", "RISE"},
		PricesUSD: map[string]decimal.Decimal{
			"WETH": dec("2000"),
			"ETH":  dec("2000"),
			"USDC": dec("1"),
			"RISE": dec("0.05"),
		},
	}
}

type testPortal struct {
	handler *apiHandler
	mux     *chi.Mux
	wallets *wallet.Manager
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()

	registry, err := router.NewRegistry(testMarket())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	finder := router.NewFinder(registry)

	client := executor.NewSimulatedClient(executor.Config{ConfirmAfter: -1})
	wallets := wallet.NewManager(wallet.Config{Client: client, DemoPrivateKey: demoPrivateKey})
	agent := chat.NewAgent(chat.Config{Finder: finder, Executor: wallets})

	goplus := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, cleanGoPlusBody)
	}))
	scamdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, cleanScamDBBody)
	}))
	t.Cleanup(goplus.Close)
	t.Cleanup(scamdb.Close)

	detector := threatintel.NewDetector(threatintel.Config{
		GoPlusURL:      goplus.URL,
		EtherScamDBURL: scamdb.URL,
		MinInterval:    time.Millisecond,
		MaxRetries:     -1,
	})

	handler := newAPIHandler(&Services{
		Finder:         finder,
		Agent:          agent,
		Wallets:        wallets,
		Intel:          detector,
		DemoPrivateKey: demoPrivateKey,
	})
	mux := chi.NewMux()
	handler.register(mux)

	return &testPortal{handler: handler, mux: mux, wallets: wallets}
}

func (p *testPortal) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	p.mux.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestChatRequiresMessage(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeAs[map[string]string](t, rec)
	if body["error"] != "Message is required" {
		t.Fatalf("error = %q", body["error"])
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	portal.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid JSON status = %d, want 400", rec.Code)
	}
}

func TestChatGeneralMessage(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeAs[models.ChatResponse](t, rec)
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if resp.Response == nil || resp.Response.Type != "general" {
		t.Fatalf("payload = %+v, want general", resp.Response)
	}
	if resp.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}
}

func TestChatSwapExecutesWithDemoWallet(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "swap 0.5 eth to usdc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeAs[models.ChatResponse](t, rec)
	if resp.Response == nil || resp.Response.Type != "swap_success" {
		t.Fatalf("payload = %+v, want swap_success", resp.Response)
	}
	if resp.Response.TxHash == "" {
		t.Fatal("expected a transaction hash")
	}

	// The execution path connects the demo wallet on demand.
	if !portal.wallets.HasActive() {
		t.Fatal("expected an active wallet session after the swap")
	}
	if len(portal.wallets.History()) != 1 {
		t.Fatalf("history = %d records, want 1", len(portal.wallets.History()))
	}
}

func TestChatAuthorizedAddressPreconnects(t *testing.T) {
	portal := newTestPortal(t)

	// Without the authorization handshake a user address changes nothing.
	portal.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hello", UserAddress: browserAddress})
	if portal.wallets.HasActive() {
		t.Fatal("unauthorized address must not connect a wallet")
	}

	rec := portal.do(t, http.MethodPost, "/api/authorize_wallet", models.AuthorizeWalletRequest{
		Address:   browserAddress,
		Signature: "0xsigned",
		Message:   "Authorize RISE Swap Hub",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("authorize status = %d: %s", rec.Code, rec.Body.String())
	}

	// Now the same chat message connects the demo wallet up front, even
	// though "hello" carries no swap intent.
	portal.do(t, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hello", UserAddress: browserAddress})
	if !portal.wallets.HasActive() {
		t.Fatal("authorized address should pre-connect the demo wallet")
	}
}

func TestAuthorizeWalletValidation(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/authorize_wallet", models.AuthorizeWalletRequest{
		Address: browserAddress,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeAs[map[string]string](t, rec)
	if body["error"] != "Address, signature and message are required" {
		t.Fatalf("error = %q", body["error"])
	}

	rec = portal.do(t, http.MethodPost, "/api/authorize_wallet", models.AuthorizeWalletRequest{
		Address:   browserAddress,
		Signature: "0xsigned",
		Message:   "Authorize RISE Swap Hub",
	})
	resp := decodeAs[models.AuthorizeWalletResponse](t, rec)
	if !resp.Success || resp.Message != "Wallet successfully authorized" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Address != browserAddress {
		t.Fatalf("address = %q, want the submitted one", resp.Address)
	}
}

func TestRouteQuery(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/route", models.RouteRequest{
		FromToken: "ETH", ToToken: "USDC", Amount: 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeAs[models.RouteResponse](t, rec)
	if !resp.Success || resp.RouteDetails == nil {
		t.Fatalf("response = %+v, want a route", resp)
	}
	if resp.RouteDetails.Path[0] != "WETH" || resp.RouteDetails.InputToken != "ETH" {
		t.Fatalf("details = %+v, want normalized path with original input token", resp.RouteDetails)
	}
	if resp.RouteDetails.EstimatedOutput <= 0 {
		t.Fatalf("estimated output = %f", resp.RouteDetails.EstimatedOutput)
	}
	if len(resp.Alternatives) == 0 {
		t.Fatal("expected ranked alternatives")
	}
}

func TestRouteQueryUnsupportedToken(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/route", models.RouteRequest{
		FromToken: "DOGE", ToToken: "USDC", Amount: 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with an error envelope", rec.Code)
	}

	resp := decodeAs[models.RouteResponse](t, rec)
	if resp.Success {
		t.Fatal("expected a failed envelope")
	}
	if resp.Error == "" || len(resp.SupportedTokens) == 0 {
		t.Fatalf("response = %+v, want error and supported tokens", resp)
	}
}

func TestSimulateQuery(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/simulate", models.SimulateRequest{
		FromToken: "WETH", ToToken: "USDC", Amounts: []float64{0.1, 1},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeAs[models.SimulateResponse](t, rec)
	if resp.TokenPair != "WETH/USDC" {
		t.Fatalf("token pair = %q", resp.TokenPair)
	}
	if len(resp.Simulations) != 2 {
		t.Fatalf("simulations = %d, want 2", len(resp.Simulations))
	}
	if resp.Simulations[0].Output >= resp.Simulations[1].Output {
		t.Fatal("larger trades should produce larger outputs")
	}
	// Both trade sizes sit well under 1% impact on the reference reserves.
	if len(resp.Recommendations) != 2 {
		t.Fatalf("recommendations = %v", resp.Recommendations)
	}
	if !strings.Contains(resp.Recommendations[0], "optimal price impact") {
		t.Fatalf("recommendation = %q", resp.Recommendations[0])
	}
}

func TestTokensList(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodGet, "/api/tokens", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeAs[models.TokensResponse](t, rec)
	if len(resp.Tokens) != 4 {
		t.Fatalf("tokens = %v", resp.Tokens)
	}
	if resp.PricesUSD["WETH"] != 2000 {
		t.Fatalf("WETH price = %f", resp.PricesUSD["WETH"])
	}
}

func TestAgentsStatus(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodGet, "/api/agents/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decodeAs[models.AgentsStatusResponse](t, rec)
	if !resp.Success {
		t.Fatal("expected success envelope")
	}
	if resp.Agents.Router.Status != "active" || resp.Agents.Router.Pools != 7 {
		t.Fatalf("router status = %+v", resp.Agents.Router)
	}
	if len(resp.Agents.Router.SupportedTokens) != 4 {
		t.Fatalf("supported tokens = %v", resp.Agents.Router.SupportedTokens)
	}
	if resp.Agents.Executor.Status != "connected" {
		t.Fatalf("executor status = %q", resp.Agents.Executor.Status)
	}
	if resp.Agents.Executor.Network != "RISE Testnet" {
		t.Fatalf("network = %q", resp.Agents.Executor.Network)
	}
	if resp.Agents.Executor.RPCURL == "" {
		t.Fatal("expected an RPC URL")
	}
}

func TestVerifyAddress(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodPost, "/api/verify_address", models.VerifyAddressRequest{
		Address: browserAddress,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeAs[models.VerifyAddressResponse](t, rec)
	if !resp.IsSafe || resp.RiskLevel != "low" {
		t.Fatalf("verdict = %+v", resp)
	}
	if len(resp.SourcesChecked) != 3 {
		t.Fatalf("sources = %v", resp.SourcesChecked)
	}
	if resp.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}

	rec = portal.do(t, http.MethodPost, "/api/verify_address", models.VerifyAddressRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing address status = %d, want 400", rec.Code)
	}
	body := decodeAs[map[string]string](t, rec)
	if body["error"] != "Address is required" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestMethodRouting(t *testing.T) {
	portal := newTestPortal(t)

	rec := portal.do(t, http.MethodGet, "/api/chat", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/chat status = %d, want 405", rec.Code)
	}
	rec = portal.do(t, http.MethodPost, "/api/tokens", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /api/tokens status = %d, want 405", rec.Code)
	}
}

func TestServerShellEndpoints(t *testing.T) {
	portal := newTestPortal(t)

	server, err := NewServer(t.Context(), &ServerConfig{
		Address:        "localhost:0",
		AllowedOrigins: []string{"http://localhost:3000"},
		EnableMetrics:  true,
	}, &Services{
		Finder:  portal.handler.services.Finder,
		Agent:   portal.handler.services.Agent,
		Wallets: portal.wallets,
		Intel:   portal.handler.services.Intel,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rec := httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"service":"rise-swap-hub"`) {
		t.Fatalf("/health body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/ready status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tokens", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/tokens through the server mux status = %d", rec.Code)
	}
}
