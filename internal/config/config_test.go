package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(configPath, []byte("output: plain\nnetwork: testnet\nretries: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SOLAGENT_NETWORK", "devnet")
	flags := GlobalFlags{ConfigPath: configPath, JSON: true, Retries: 5}
	settings, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "json" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.Network != "devnet" {
		t.Fatalf("expected env to beat the file, got network=%s", settings.Network)
	}
	if settings.Retries != 5 {
		t.Fatalf("expected retries from flags, got %d", settings.Retries)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	_, err := Load(GlobalFlags{JSON: true, Plain: true})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}

func TestLoadFileEndpointsAndJournal(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	body := `
timeout: 30s
rpc:
  devnet: https://rpc.example.com/devnet
journal:
  enabled: false
quote:
  url: https://quote.example.com
  api_key_env: SOLAGENT_TEST_QUOTE_KEY
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SOLAGENT_TEST_QUOTE_KEY", "secret")

	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.Timeout != 30*time.Second {
		t.Fatalf("timeout = %s", settings.Timeout)
	}
	if settings.RPCEndpoints["devnet"] != "https://rpc.example.com/devnet" {
		t.Fatalf("devnet endpoint = %s", settings.RPCEndpoints["devnet"])
	}
	// Untouched endpoints keep their defaults.
	if settings.RPCEndpoints["mainnet"] != "https://api.mainnet-beta.solana.com" {
		t.Fatalf("mainnet endpoint = %s", settings.RPCEndpoints["mainnet"])
	}
	if settings.JournalEnabled {
		t.Fatal("journal should be disabled by the file")
	}
	if settings.QuoteURL != "https://quote.example.com" || settings.QuoteAPIKey != "secret" {
		t.Fatalf("quote settings = %s / %s", settings.QuoteURL, settings.QuoteAPIKey)
	}
}

func TestLoadSelectFields(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")
	settings, err := Load(GlobalFlags{ConfigPath: missing, Select: " signature, units ,", Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.SelectFields) != 2 || settings.SelectFields[0] != "signature" || settings.SelectFields[1] != "units" {
		t.Fatalf("select fields = %v", settings.SelectFields)
	}
}

func TestLoadRPCURLFlagOverridesActiveNetwork(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")
	settings, err := Load(GlobalFlags{ConfigPath: missing, Network: "devnet", RPCURL: "http://localhost:8899", Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.RPCEndpoints["devnet"] != "http://localhost:8899" {
		t.Fatalf("devnet endpoint = %s", settings.RPCEndpoints["devnet"])
	}
}
