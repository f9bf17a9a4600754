// Package wallet tracks connected wallet sessions and the credential
// material behind them. A Manager fronts the transaction executor: swaps
// and transfers require a connected session, successful transactions land
// in a bounded history, and credentials live encrypted in a Vault. Log
// lines carry a short address hash, never the address or key itself.
package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/riseport-labs/rise-swap-hub/portal/executor"
)

var walletLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	walletLog = zerolog.New(out).With().Timestamp().Str("component", "wallet").Logger()
}

// Connection methods a session can be established with.
const (
	MethodPrivateKey = "private_key"
	MethodMnemonic   = "mnemonic"
)

const defaultHistoryLimit = 100

// mnemonicSessionAddress is the fixed account the simulated mnemonic flow
// connects to. Mnemonic derivation is not implemented; the session gets
// demo balances instead.
const mnemonicSessionAddress = "0xABCDEF123456789012345678901234567890ABCD"

var (
	// ErrNoWallet is returned when an operation needs a connected wallet
	// session and none exists.
	ErrNoWallet = errors.New("no wallet connected")

	// ErrInvalidKeyFormat rejects obviously malformed private keys before
	// any derivation is attempted.
	ErrInvalidKeyFormat = errors.New("invalid private key format")

	// ErrMetaMaskServerSide is returned for browser-wallet connections,
	// which only the frontend can complete.
	ErrMetaMaskServerSide = errors.New("metamask connection must be completed through the frontend")
)

func mnemonicBalances() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"WETH": decimal.RequireFromString("1.5"),
		"USDC": decimal.NewFromInt(1200),
		"USDT": decimal.NewFromInt(800),
		"DAI":  decimal.NewFromInt(900),
		"RISE": decimal.NewFromInt(15000),
	}
}

// Session is one connected wallet.
type Session struct {
	Address       string
	BalanceETH    decimal.Decimal
	TokenBalances map[string]decimal.Decimal
	Method        string
	ConnectedAt   time.Time
	Token         string

	credentials *EncryptedSecret
}

func (s *Session) clone() *Session {
	out := *s
	out.TokenBalances = make(map[string]decimal.Decimal, len(s.TokenBalances))
	for k, v := range s.TokenBalances {
		out.TokenBalances[k] = v
	}
	// Credentials stay inside the manager.
	out.credentials = nil
	return &out
}

// Record is one entry in the transaction history. Swap records fill the
// token-pair fields, transfer records the token/receiver fields.
type Record struct {
	Type      string
	TxHash    string
	FromToken string
	ToToken   string
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	DEX       string
	Token     string
	Amount    decimal.Decimal
	Receiver  string
	GasUsed   int64
	Status    string
	Timestamp time.Time
}

// ApprovalResult describes a simulated ERC20 approval.
type ApprovalResult struct {
	TxHash      string
	Token       string
	Spender     string
	Amount      string
	ExplorerURL string
}

// Config wires a Manager to its collaborators.
type Config struct {
	Client executor.Client
	Vault  *Vault

	// DemoPrivateKey, when set, connects a session automatically the
	// first time an execution call arrives with no wallet connected.
	DemoPrivateKey string

	// ExplorerURL is the block explorer root for approval links. Empty
	// means the RISE testnet explorer.
	ExplorerURL string

	// HistoryLimit bounds the transaction history. Zero means 100
	// records; the oldest records fall off first.
	HistoryLimit int
}

// Manager holds wallet sessions keyed by address and routes execution
// calls to the underlying chain client. It satisfies executor.Client so
// the conversation layer can talk to it directly.
type Manager struct {
	client      executor.Client
	vault       *Vault
	demoKey     string
	explorerURL string
	limit       int

	mu       sync.Mutex
	sessions map[string]*Session
	active   string
	history  []Record
}

var _ executor.Client = (*Manager)(nil)

// NewManager builds a Manager from cfg. cfg.Client must be set.
func NewManager(cfg Config) *Manager {
	if cfg.Vault == nil {
		cfg.Vault = NewVault("")
	}
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = executor.ExplorerBaseURL("rise-testnet")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	return &Manager{
		client:      cfg.Client,
		vault:       cfg.Vault,
		demoKey:     cfg.DemoPrivateKey,
		explorerURL: strings.TrimSuffix(cfg.ExplorerURL, "/"),
		limit:       cfg.HistoryLimit,
		sessions:    make(map[string]*Session),
	}
}

// ConnectPrivateKey derives the account address from a hex private key,
// opens a session for it, and makes that session the active one. The key
// is stored encrypted.
func (m *Manager) ConnectPrivateKey(ctx context.Context, privateKey string) (*Session, error) {
	if len(privateKey) < 60 {
		return nil, ErrInvalidKeyFormat
	}
	addr, err := ValidatePrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}

	balance, err := m.client.Balance(ctx, "ETH")
	if err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}
	sealed, err := m.vault.EncryptPrivateKey(privateKey, addr.Hex())
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Address:       addr.Hex(),
		BalanceETH:    balance,
		TokenBalances: map[string]decimal.Decimal{},
		Method:        MethodPrivateKey,
		ConnectedAt:   time.Now(),
		Token:         NewSessionToken(addr.Hex()),
		credentials:   sealed,
	}
	m.store(sess)

	walletLog.Info().
		Str("address_hash", HashAddress(sess.Address)).
		Str("method", MethodPrivateKey).
		Msg("wallet connected")
	return sess.clone(), nil
}

// ConnectMnemonic opens a simulated session for a 12 or 24 word mnemonic.
// The phrase is stored encrypted; no key derivation happens.
func (m *Manager) ConnectMnemonic(mnemonic string) (*Session, error) {
	count, err := ValidateSeedPhrase(mnemonic)
	if err != nil {
		return nil, err
	}
	if count != 12 && count != 24 {
		return nil, errors.New("mnemonic phrase must be 12 or 24 words")
	}

	sealed, err := m.vault.EncryptSeedPhrase(mnemonic, mnemonicSessionAddress)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Address:       mnemonicSessionAddress,
		BalanceETH:    decimal.RequireFromString("3.2"),
		TokenBalances: mnemonicBalances(),
		Method:        MethodMnemonic,
		ConnectedAt:   time.Now(),
		Token:         NewSessionToken(mnemonicSessionAddress),
		credentials:   sealed,
	}
	m.store(sess)

	walletLog.Info().
		Str("address_hash", HashAddress(sess.Address)).
		Str("method", MethodMnemonic).
		Int("words", count).
		Msg("wallet connected")
	return sess.clone(), nil
}

// ConnectMetaMask always fails: browser-wallet handshakes happen in the
// frontend, the server only ever sees the authorized address.
func (m *Manager) ConnectMetaMask() (*Session, error) {
	return nil, ErrMetaMaskServerSide
}

// Disconnect closes the session for address.
func (m *Manager) Disconnect(address string) error {
	key := strings.ToLower(address)

	m.mu.Lock()
	if _, ok := m.sessions[key]; !ok {
		m.mu.Unlock()
		return ErrNoWallet
	}
	delete(m.sessions, key)
	if m.active == key {
		m.active = ""
	}
	m.mu.Unlock()

	walletLog.Info().Str("address_hash", HashAddress(address)).Msg("wallet disconnected")
	return nil
}

// Session returns a copy of the session for address, if one exists.
func (m *Manager) Session(address string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[strings.ToLower(address)]
	if !ok {
		return nil, false
	}
	return sess.clone(), true
}

// Active returns a copy of the active session, if any.
func (m *Manager) Active() (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return nil, false
	}
	return m.sessions[m.active].clone(), true
}

// HasActive reports whether any wallet session is currently active.
func (m *Manager) HasActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != ""
}

// PrivateKey decrypts the signing key of a private-key session.
func (m *Manager) PrivateKey(address string) (string, error) {
	m.mu.Lock()
	sess, ok := m.sessions[strings.ToLower(address)]
	m.mu.Unlock()
	if !ok {
		return "", ErrNoWallet
	}
	if sess.Method != MethodPrivateKey {
		return "", fmt.Errorf("session for %s holds no private key", address)
	}
	return m.vault.DecryptPrivateKey(sess.credentials)
}

// History returns a copy of the recorded transactions, oldest first.
func (m *Manager) History() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.history))
	copy(out, m.history)
	return out
}

// ApproveToken simulates an ERC20 approval for the active session and
// returns the resulting transaction hash. A zero amount means an
// unlimited allowance.
func (m *Manager) ApproveToken(token, spender string, amount decimal.Decimal) (*ApprovalResult, error) {
	if !m.HasActive() {
		return nil, ErrNoWallet
	}
	display := "unlimited"
	if amount.IsPositive() {
		display = amount.String()
	}
	preimage := fmt.Sprintf("approve_%s_%s_%s_%d", token, spender, display, time.Now().UnixNano())
	sum := sha256.Sum256([]byte(preimage))
	txHash := "0x" + hex.EncodeToString(sum[:])

	walletLog.Info().Str("token", token).Str("tx_hash", txHash).Msg("token approval simulated")
	return &ApprovalResult{
		TxHash:      txHash,
		Token:       token,
		Spender:     spender,
		Amount:      display,
		ExplorerURL: m.explorerURL + "/tx/" + txHash,
	}, nil
}

// ExecuteSwap runs a single-step swap through the chain client after
// making sure a wallet session exists, and records the result.
func (m *Manager) ExecuteSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*executor.SwapResult, error) {
	if err := m.ensureSession(ctx); err != nil {
		return nil, err
	}
	res, err := m.client.ExecuteSwap(ctx, fromToken, toToken, amount)
	if err != nil {
		return nil, err
	}
	m.record(swapRecord(res))
	return res, nil
}

// ExecuteTwoStepSwap runs an approval-then-swap sequence through the
// chain client after making sure a wallet session exists, and records
// the result.
func (m *Manager) ExecuteTwoStepSwap(ctx context.Context, fromToken, toToken string, amount decimal.Decimal) (*executor.SwapResult, error) {
	if err := m.ensureSession(ctx); err != nil {
		return nil, err
	}
	res, err := m.client.ExecuteTwoStepSwap(ctx, fromToken, toToken, amount)
	if err != nil {
		return nil, err
	}
	m.record(swapRecord(res))
	return res, nil
}

// ExecuteTransfer sends tokens through the chain client after making
// sure a wallet session exists, and records the result.
func (m *Manager) ExecuteTransfer(ctx context.Context, token string, amount decimal.Decimal, receiver string) (*executor.TransferResult, error) {
	if err := m.ensureSession(ctx); err != nil {
		return nil, err
	}
	res, err := m.client.ExecuteTransfer(ctx, token, amount, receiver)
	if err != nil {
		return nil, err
	}
	m.record(Record{
		Type:      "transfer",
		TxHash:    res.TxHash,
		Token:     res.Token,
		Amount:    res.Amount,
		Receiver:  res.Receiver,
		GasUsed:   res.GasUsed,
		Status:    res.Status,
		Timestamp: time.Now(),
	})
	return res, nil
}

// TransactionStatus reports the state of a submitted transaction.
func (m *Manager) TransactionStatus(ctx context.Context, txHash string) (*executor.TxStatus, error) {
	return m.client.TransactionStatus(ctx, txHash)
}

// Balance reports the chain client's balance for token.
func (m *Manager) Balance(ctx context.Context, token string) (decimal.Decimal, error) {
	return m.client.Balance(ctx, token)
}

// IsConnected reports whether the underlying chain client is reachable.
func (m *Manager) IsConnected() bool { return m.client.IsConnected() }

// Network names the chain the underlying client talks to.
func (m *Manager) Network() string { return m.client.Network() }

// RPCURL is the endpoint of the underlying chain client.
func (m *Manager) RPCURL() string { return m.client.RPCURL() }

func (m *Manager) store(sess *Session) {
	key := strings.ToLower(sess.Address)
	m.mu.Lock()
	m.sessions[key] = sess
	m.active = key
	m.mu.Unlock()
}

// ensureSession connects the demo key when execution is requested with no
// wallet attached, so conversational flows work out of the box. Without a
// demo key the call fails and the chat layer prompts for a connection.
func (m *Manager) ensureSession(ctx context.Context) error {
	if m.HasActive() {
		return nil
	}
	if m.demoKey == "" {
		return ErrNoWallet
	}
	if _, err := m.ConnectPrivateKey(ctx, m.demoKey); err != nil {
		return fmt.Errorf("wallet connection failed: %w", err)
	}
	return nil
}

func swapRecord(res *executor.SwapResult) Record {
	return Record{
		Type:      "swap",
		TxHash:    res.TxHash,
		FromToken: res.FromToken,
		ToToken:   res.ToToken,
		AmountIn:  res.AmountIn,
		AmountOut: res.AmountOut,
		DEX:       res.DEX,
		GasUsed:   res.GasUsed,
		Status:    res.Status,
		Timestamp: time.Now(),
	}
}

func (m *Manager) record(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, rec)
	if len(m.history) > m.limit {
		m.history = m.history[len(m.history)-m.limit:]
	}
}
