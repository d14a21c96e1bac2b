package signer

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"
)

const (
	EnvPrivateKey     = "SOLAGENT_PRIVATE_KEY"
	EnvPrivateKeyFile = "SOLAGENT_SIGNER_KEY_PATH"

	defaultKeyRelativePath = "solagent/key.json"
)

// LocalSigner holds an ed25519 keypair in process memory.
type LocalSigner struct {
	privateKey ed25519.PrivateKey
	address    string
}

func (s *LocalSigner) Address() string {
	return s.address
}

func (s *LocalSigner) Sign(message []byte) ([]byte, error) {
	if s == nil || len(s.privateKey) == 0 {
		return nil, fmt.Errorf("local signer is not initialized")
	}
	return ed25519.Sign(s.privateKey, message), nil
}

// NewLocalSignerFromEnv loads a keypair with inline-key precedence: the
// env var key first, then the configured key file, then the default key
// file location.
func NewLocalSignerFromEnv(configuredPath string) (*LocalSigner, error) {
	if raw := strings.TrimSpace(os.Getenv(EnvPrivateKey)); raw != "" {
		return newFromBase58(raw)
	}
	path := strings.TrimSpace(os.Getenv(EnvPrivateKeyFile))
	if path == "" {
		path = strings.TrimSpace(configuredPath)
	}
	if path == "" {
		path = discoverDefaultKeyFile()
	}
	if path == "" {
		return nil, fmt.Errorf("missing signing key: set %s or %s", EnvPrivateKey, EnvPrivateKeyFile)
	}
	return NewLocalSignerFromFile(path)
}

// NewLocalSignerFromFile reads a keypair file in either the standard JSON
// byte-array format or a bare base58 string.
func NewLocalSignerFromFile(path string) (*LocalSigner, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	trimmed := strings.TrimSpace(string(buf))
	if strings.HasPrefix(trimmed, "[") {
		var bytes []byte
		if err := json.Unmarshal([]byte(trimmed), &bytes); err != nil {
			return nil, fmt.Errorf("parse key file JSON: %w", err)
		}
		return newFromKeyBytes(bytes)
	}
	return newFromBase58(trimmed)
}

func newFromBase58(raw string) (*LocalSigner, error) {
	decoded, err := base58.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode base58 key: %w", err)
	}
	return newFromKeyBytes(decoded)
}

func newFromKeyBytes(bytes []byte) (*LocalSigner, error) {
	var pk ed25519.PrivateKey
	switch len(bytes) {
	case ed25519.PrivateKeySize:
		pk = ed25519.PrivateKey(bytes)
	case ed25519.SeedSize:
		pk = ed25519.NewKeyFromSeed(bytes)
	default:
		return nil, fmt.Errorf("key must be %d or %d bytes, got %d", ed25519.PrivateKeySize, ed25519.SeedSize, len(bytes))
	}
	pub, ok := pk.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("invalid ed25519 public key")
	}
	return &LocalSigner{privateKey: pk, address: encodeAddress(pub)}, nil
}

func discoverDefaultKeyFile() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	path := filepath.Join(base, defaultKeyRelativePath)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}
