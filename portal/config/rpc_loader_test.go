package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/riseport-labs/rise-swap-hub/portal/config"
)

// helper to reset env vars with SWAPHUB_ prefix between tests
func unsetSwapHubEnv() {
	for _, e := range os.Environ() {
		if len(e) > 8 && e[:8] == "SWAPHUB_" {
			if idx := strings.Index(e, "="); idx != -1 {
				_ = os.Unsetenv(e[:idx])
			}
		}
	}
}

func TestLoadRPCPortalConfig_FromEnv_Success(t *testing.T) {
	unsetSwapHubEnv()
	// set minimal valid envs
	_ = os.Setenv("SWAPHUB_PORT", "8003")
	_ = os.Setenv("SWAPHUB_HOST", "0.0.0.0")
	_ = os.Setenv("SWAPHUB_ALLOWED_ORIGINS", "*")
	_ = os.Setenv("SWAPHUB_MARKET_CONFIG_PATH", "market.toml")
	_ = os.Setenv("SWAPHUB_INTEL_SOURCE_URLS", "https://intel.example.com/a,https://intel.example.com/b")

	cfg, err := LoadRPCPortalConfig(nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected config, got nil")
	}
	if cfg.Port != 8003 || cfg.Host != "0.0.0.0" {
		t.Errorf("unexpected port/host: %v %v", cfg.Port, cfg.Host)
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Errorf("expected at least one allowed origin")
	}
	if cfg.MarketConfigPath != "market.toml" {
		t.Errorf("unexpected market config path: %v", cfg.MarketConfigPath)
	}
	if len(cfg.IntelSourceURLs) != 2 {
		t.Errorf("expected 2 intel urls, got %d", len(cfg.IntelSourceURLs))
	}
}

func TestLoadRPCPortalConfig_FromEnv_FailVerification(t *testing.T) {
	unsetSwapHubEnv()
	_ = os.Unsetenv("SWAPHUB_HOST")
	// Run in empty dir so godotenv.Load() inside the loader doesn't set SWAPHUB_* from a .env file
	origWd, _ := os.Getwd()
	defer os.Chdir(origWd)
	_ = os.Chdir(t.TempDir())

	// missing HOST
	_ = os.Setenv("SWAPHUB_PORT", "8003")
	_ = os.Setenv("SWAPHUB_ALLOWED_ORIGINS", "*")
	_ = os.Setenv("SWAPHUB_MARKET_CONFIG_PATH", "market.toml")

	_, err := LoadRPCPortalConfig(nil)
	if err == nil {
		t.Fatalf("expected error due to missing host, got nil")
	}
}

func TestLoadRPCPortalConfig_FromFile_Success(t *testing.T) {
	unsetSwapHubEnv()

	dir := t.TempDir()
	path := filepath.Join(dir, "rpc_config.toml")
	content := `
port = 9090
host = "127.0.0.1"
allowed_origins = ["https://example.com"]
market_config_path = "testdata/market.toml"
network_name = "RISE Testnet"
chain_id = 11155931
explorer_url = "https://explorer.testnet.riselabs.xyz"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing temp config: %v", err)
	}

	cfgPath := path
	cfg, err := LoadRPCPortalConfig(&cfgPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 9090 || cfg.Host != "127.0.0.1" {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("unexpected allowed origins: %+v", cfg.AllowedOrigins)
	}
	if cfg.ChainID != 11155931 {
		t.Errorf("unexpected chain id: %d", cfg.ChainID)
	}
	if cfg.NetworkName != "RISE Testnet" {
		t.Errorf("unexpected network name: %s", cfg.NetworkName)
	}
}

func TestLoadRPCPortalConfig_FromFile_WrongExtension(t *testing.T) {
	unsetSwapHubEnv()
	p := "config.yaml"
	_, err := LoadRPCPortalConfig(&p)
	if err == nil {
		t.Fatalf("expected error for non-toml file")
	}
}

func TestLoadRPCPortalConfig_FileOverridesEnv(t *testing.T) {
	unsetSwapHubEnv()
	// set env with different values
	_ = os.Setenv("SWAPHUB_PORT", "8000")
	_ = os.Setenv("SWAPHUB_HOST", "0.0.0.0")
	_ = os.Setenv("SWAPHUB_ALLOWED_ORIGINS", "*")
	_ = os.Setenv("SWAPHUB_MARKET_CONFIG_PATH", "env-market.toml")

	dir := t.TempDir()
	path := filepath.Join(dir, "rpc_config.toml")
	content := `
port = 7000
host = "1.2.3.4"
allowed_origins = ["https://a.com"]
market_config_path = "file-market.toml"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing temp config: %v", err)
	}
	cfgPath := path
	cfg, err := LoadRPCPortalConfig(&cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 7000 || cfg.Host != "1.2.3.4" {
		t.Errorf("expected file values to be used, got: %+v", cfg)
	}
	if cfg.MarketConfigPath != "file-market.toml" {
		t.Errorf("expected file market path, got: %v", cfg.MarketConfigPath)
	}
}
