package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

const (
	encryptionVersion = "v1"
	kdfIterations     = 100_000
	kdfKeyLength      = 32

	defaultMasterPassword = "default_dev_password"
)

// Development salts used when no user id is available. Real deployments
// pass a user id so every secret gets its own derived salt.
var (
	staticKeySalt  = []byte("static_salt_for_dev")
	staticSeedSalt = []byte("static_seed_salt_dev")
)

// EncryptedSecret is the storable form of a private key or seed phrase.
// The ciphertext carries its GCM nonce as a prefix; the salt feeds the
// key derivation on decrypt.
type EncryptedSecret struct {
	Ciphertext string `json:"ciphertext"`
	Salt       string `json:"salt"`
	Version    string `json:"encryption_version"`
	CreatedAt  int64  `json:"created_at"`
}

// Vault encrypts and decrypts wallet credentials with keys derived from a
// master password via PBKDF2-SHA256 and sealed with AES-GCM. Derived
// ciphers are cached per salt since the derivation is deliberately slow.
type Vault struct {
	master string

	mu      sync.Mutex
	ciphers map[string]cipher.AEAD
}

// NewVault builds a Vault around the given master password. An empty
// password falls back to the development default.
func NewVault(masterPassword string) *Vault {
	if masterPassword == "" {
		masterPassword = defaultMasterPassword
	}
	return &Vault{master: masterPassword, ciphers: make(map[string]cipher.AEAD)}
}

// EncryptPrivateKey seals a private key for storage. The optional userID
// salts the derived key so two users never share cipher material.
func (v *Vault) EncryptPrivateKey(privateKey, userID string) (*EncryptedSecret, error) {
	salt := userSalt("wallet_salt_", userID, staticKeySalt)
	sealed, err := v.seal(privateKey, salt)
	if err != nil {
		return nil, fmt.Errorf("encrypt private key: %w", err)
	}
	return sealed, nil
}

// DecryptPrivateKey opens a secret produced by EncryptPrivateKey.
func (v *Vault) DecryptPrivateKey(enc *EncryptedSecret) (string, error) {
	plain, err := v.open(enc)
	if err != nil {
		return "", fmt.Errorf("decrypt private key: %w", err)
	}
	return plain, nil
}

// EncryptSeedPhrase seals a mnemonic for storage.
func (v *Vault) EncryptSeedPhrase(seedPhrase, userID string) (*EncryptedSecret, error) {
	salt := userSalt("seed_salt_", userID, staticSeedSalt)
	sealed, err := v.seal(seedPhrase, salt)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed phrase: %w", err)
	}
	return sealed, nil
}

// DecryptSeedPhrase opens a secret produced by EncryptSeedPhrase.
func (v *Vault) DecryptSeedPhrase(enc *EncryptedSecret) (string, error) {
	plain, err := v.open(enc)
	if err != nil {
		return "", fmt.Errorf("decrypt seed phrase: %w", err)
	}
	return plain, nil
}

func userSalt(prefix, userID string, fallback []byte) []byte {
	if userID == "" {
		return fallback
	}
	sum := sha256.Sum256([]byte(prefix + userID))
	return sum[:16]
}

func (v *Vault) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := hex.EncodeToString(salt)

	v.mu.Lock()
	defer v.mu.Unlock()
	if aead, ok := v.ciphers[key]; ok {
		return aead, nil
	}

	derived := pbkdf2.Key([]byte(v.master), salt, kdfIterations, kdfKeyLength, sha256.New)
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	v.ciphers[key] = aead
	return aead, nil
}

func (v *Vault) seal(plaintext string, salt []byte) (*EncryptedSecret, error) {
	aead, err := v.cipherFor(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return &EncryptedSecret{
		Ciphertext: base64.URLEncoding.EncodeToString(sealed),
		Salt:       base64.URLEncoding.EncodeToString(salt),
		Version:    encryptionVersion,
		CreatedAt:  time.Now().Unix(),
	}, nil
}

func (v *Vault) open(enc *EncryptedSecret) (string, error) {
	if enc == nil {
		return "", errors.New("no encrypted secret")
	}
	salt, err := base64.URLEncoding.DecodeString(enc.Salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	sealed, err := base64.URLEncoding.DecodeString(enc.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	aead, err := v.cipherFor(salt)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// ValidatePrivateKey checks the shape of a hex private key and derives the
// account address it controls. A 0x prefix is accepted.
func ValidatePrivateKey(privateKey string) (common.Address, error) {
	trimmed := strings.TrimPrefix(privateKey, "0x")
	if len(trimmed) != 64 {
		return common.Address{}, errors.New("private key must be 64 hex characters (32 bytes)")
	}
	if _, err := hex.DecodeString(trimmed); err != nil {
		return common.Address{}, errors.New("private key must contain only hex characters (0-9, a-f)")
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return common.Address{}, fmt.Errorf("derive address: %w", err)
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// ValidateSeedPhrase checks the word count and word shape of a mnemonic
// and returns the word count. It does not verify the BIP39 checksum.
func ValidateSeedPhrase(seedPhrase string) (int, error) {
	words := strings.Fields(seedPhrase)
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return 0, errors.New("seed phrase must contain 12, 15, 18, 21, or 24 words")
	}
	for _, word := range words {
		if len(word) < 3 || !isAlpha(word) {
			return 0, fmt.Errorf("invalid word in seed phrase: %s", word)
		}
	}
	return len(words), nil
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// NewSessionToken derives a 32-character session token bound to an
// address, the current time, and fresh randomness.
func NewSessionToken(address string) string {
	seed := fmt.Sprintf("%s_%d_%s", address, time.Now().Unix(), uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:32]
}

// HashAddress produces a short stable identifier for an address, safe to
// put in logs where the address itself should not appear.
func HashAddress(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(address)))
	return hex.EncodeToString(sum[:])[:16]
}

// sensitiveSessionFields are stripped by SanitizeSession before session
// data reaches logs or debug output.
var sensitiveSessionFields = []string{
	"private_key",
	"seed_phrase",
	"encrypted_private_key",
	"encrypted_seed_phrase",
	"raw_credentials",
}

// SanitizeSession returns a copy of session data with credential fields
// replaced by a redaction marker.
func SanitizeSession(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, field := range sensitiveSessionFields {
		if _, ok := out[field]; ok {
			out[field] = "[REDACTED]"
		}
	}
	return out
}
