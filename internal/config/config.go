package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type GlobalFlags struct {
	ConfigPath  string
	JSON        bool
	Plain       bool
	Select      string
	ResultsOnly bool
	Timeout     string
	Retries     int
	Network     string
	RPCURL      string
	NoJournal   bool
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	Timeout         time.Duration
	Retries         int
	Network         string
	RPCEndpoints    map[string]string
	TokenIndexURL   string
	QuoteURL        string
	QuoteAPIKey     string
	JournalEnabled  bool
	JournalPath     string
	JournalLockPath string
	SignerKeyPath   string
}

type fileConfig struct {
	Output  string `yaml:"output"`
	Timeout string `yaml:"timeout"`
	Retries *int   `yaml:"retries"`
	Network string `yaml:"network"`
	RPC     struct {
		Mainnet string `yaml:"mainnet"`
		Devnet  string `yaml:"devnet"`
		Testnet string `yaml:"testnet"`
	} `yaml:"rpc"`
	TokenIndex struct {
		URL string `yaml:"url"`
	} `yaml:"token_index"`
	Quote struct {
		URL       string `yaml:"url"`
		APIKey    string `yaml:"api_key"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"quote"`
	Journal struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
	Signer struct {
		KeyPath string `yaml:"key_path"`
	} `yaml:"signer"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}
	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}
	applyEnv(&settings)
	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 15 * time.Second
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	return settings, nil
}

func defaultSettings() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, ".solagent")
	return Settings{
		OutputMode: "json",
		Timeout:    15 * time.Second,
		Retries:    1,
		Network:    "mainnet",
		RPCEndpoints: map[string]string{
			"mainnet": "https://api.mainnet-beta.solana.com",
			"devnet":  "https://api.devnet.solana.com",
			"testnet": "https://api.testnet.solana.com",
		},
		TokenIndexURL:   "https://lite-api.jup.ag/tokens/v2",
		QuoteURL:        "https://lite-api.jup.ag/swap/v1",
		JournalEnabled:  true,
		JournalPath:     filepath.Join(base, "runs.db"),
		JournalLockPath: filepath.Join(base, "runs.lock"),
	}, nil
}

func resolveConfigPath(flagPath string) (string, error) {
	if strings.TrimSpace(flagPath) != "" {
		return flagPath, nil
	}
	if env := strings.TrimSpace(os.Getenv("SOLAGENT_CONFIG")); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".solagent", "config.yaml"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = cfg.Output
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout in config: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Retries != nil {
		settings.Retries = *cfg.Retries
	}
	if cfg.Network != "" {
		settings.Network = cfg.Network
	}
	if cfg.RPC.Mainnet != "" {
		settings.RPCEndpoints["mainnet"] = cfg.RPC.Mainnet
	}
	if cfg.RPC.Devnet != "" {
		settings.RPCEndpoints["devnet"] = cfg.RPC.Devnet
	}
	if cfg.RPC.Testnet != "" {
		settings.RPCEndpoints["testnet"] = cfg.RPC.Testnet
	}
	if cfg.TokenIndex.URL != "" {
		settings.TokenIndexURL = cfg.TokenIndex.URL
	}
	if cfg.Quote.URL != "" {
		settings.QuoteURL = cfg.Quote.URL
	}
	if cfg.Quote.APIKey != "" {
		settings.QuoteAPIKey = cfg.Quote.APIKey
	}
	if cfg.Quote.APIKeyEnv != "" {
		if v := os.Getenv(cfg.Quote.APIKeyEnv); v != "" {
			settings.QuoteAPIKey = v
		}
	}
	if cfg.Journal.Enabled != nil {
		settings.JournalEnabled = *cfg.Journal.Enabled
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}
	if cfg.Signer.KeyPath != "" {
		settings.SignerKeyPath = cfg.Signer.KeyPath
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("SOLAGENT_RPC_URL"); v != "" {
		settings.RPCEndpoints[settings.Network] = v
	}
	if v := os.Getenv("SOLAGENT_NETWORK"); v != "" {
		settings.Network = v
	}
	if v := os.Getenv("SOLAGENT_QUOTE_API_KEY"); v != "" {
		settings.QuoteAPIKey = v
	}
	if v := os.Getenv("SOLAGENT_SIGNER_KEY_PATH"); v != "" {
		settings.SignerKeyPath = v
	}
	if v := os.Getenv("SOLAGENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("SOLAGENT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			settings.Retries = n
		}
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("--json and --plain are mutually exclusive")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		fields := strings.Split(flags.Select, ",")
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			f = strings.TrimSpace(f)
			if f != "" {
				out = append(out, f)
			}
		}
		settings.SelectFields = out
	}
	if flags.ResultsOnly {
		settings.ResultsOnly = true
	}
	if strings.TrimSpace(flags.Timeout) != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.Retries = flags.Retries
	}
	if strings.TrimSpace(flags.Network) != "" {
		settings.Network = flags.Network
	}
	if strings.TrimSpace(flags.RPCURL) != "" {
		settings.RPCEndpoints[settings.Network] = flags.RPCURL
	}
	if flags.NoJournal {
		settings.JournalEnabled = false
	}
	return nil
}
