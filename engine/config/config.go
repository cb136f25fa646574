// Package config loads the exchange interface configuration from environment variables and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/popswap/popswap-interface/chain"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// ErrMissingNetworkURL is returned when no network RPC URL is configured. The read-only network
// fallback cannot be built without it.
var ErrMissingNetworkURL = errors.New("NETWORK_URL must be a defined environment variable")

const (
	DefaultRPCURL     = "https://dataseed.popcateum.org"
	DefaultAppName    = "PopSwap"
	DefaultAppLogoURL = "https://raw.githubusercontent.com/Excoinsevm/token-list/refs/heads/main/src/tokens/CoinLogos/0xdcE5726e3Bc8E1F574416978279bb0AE62AB3c15.png"
)

// InjectedConfig is the configuration of the injected wallet provider.
type InjectedConfig struct {
	URL               string        `mapstructure:"url" yaml:"url"`                                 // Wallet JSON-RPC endpoint. Empty means no injected wallet.
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`             // How often the wallet is sampled for chain and account changes
	SupportedChainIDs []uint64      `mapstructure:"supported_chain_ids" yaml:"supported_chain_ids"` // Chains accepted from the injected wallet
}

// WalletConnectConfig is the configuration of the QR-code bridge wallet.
type WalletConnectConfig struct {
	Bridge       string        `mapstructure:"bridge" yaml:"bridge"`               // Relay URL. Empty selects the public bridge.
	RPCURL       string        `mapstructure:"rpc_url" yaml:"rpc_url"`             // RPC endpoint used for reads while paired
	QRCode       bool          `mapstructure:"qrcode" yaml:"qrcode"`               // Render the pairing URI as a QR code
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"` // Keep-alive interval of the bridge connection
}

// WalletLinkConfig is the configuration of the hosted-wallet link.
type WalletLinkConfig struct {
	URL        string `mapstructure:"url" yaml:"url"`
	AppName    string `mapstructure:"app_name" yaml:"app_name"`
	AppLogoURL string `mapstructure:"app_logo_url" yaml:"app_logo_url"`
}

// Config wraps the entire configuration of the exchange interface.
type Config struct {
	NetworkURL    string              `mapstructure:"network_url" yaml:"network_url"` // Required: read-only RPC endpoint
	ChainID       uint64              `mapstructure:"chain_id" yaml:"chain_id"`       // Chain served by NetworkURL
	Injected      InjectedConfig      `mapstructure:"injected" yaml:"injected"`
	WalletConnect WalletConnectConfig `mapstructure:"walletconnect" yaml:"walletconnect"`
	WalletLink    WalletLinkConfig    `mapstructure:"walletlink" yaml:"walletlink"`
	UserAgent     string              `mapstructure:"user_agent" yaml:"user_agent"` // Browser user agent, used for the mobile wallet special case
	LogLevel      string              `mapstructure:"log_level" yaml:"log_level"`
}

// Validate checks that the required values are present.
func (c *Config) Validate() error {
	if c.NetworkURL == "" {
		return ErrMissingNetworkURL
	}
	if c.ChainID == 0 {
		return errors.New("chain id must be greater than zero")
	}
	if _, err := logger.ConfigFromLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

var (
	defaults = map[string]any{
		"chain_id":                     chain.PopcateumMainnet,
		"injected.poll_interval":       "2s",
		"injected.supported_chain_ids": []uint64{chain.PopcateumMainnet},
		"walletconnect.rpc_url":        DefaultRPCURL,
		"walletconnect.qrcode":         true,
		"walletconnect.poll_interval":  "15s",
		"walletlink.url":               DefaultRPCURL,
		"walletlink.app_name":          DefaultAppName,
		"walletlink.app_logo_url":      DefaultAppLogoURL,
		"log_level":                    "info",
	}

	// envBindings maps config keys to the environment variables that can provide them. The first
	// name is the preferred one; the second, when present, is the name used by earlier web builds.
	envBindings = map[string][]string{
		"network_url":                 {"NETWORK_URL", "REACT_APP_NETWORK_URL"},
		"chain_id":                    {"CHAIN_ID", "REACT_APP_CHAIN_ID"},
		"injected.url":                {"INJECTED_PROVIDER_URL"},
		"injected.poll_interval":      {"INJECTED_POLL_INTERVAL"},
		"walletconnect.bridge":        {"WALLETCONNECT_BRIDGE"},
		"walletconnect.rpc_url":       {"WALLETCONNECT_RPC_URL"},
		"walletconnect.qrcode":        {"WALLETCONNECT_QRCODE"},
		"walletconnect.poll_interval": {"WALLETCONNECT_POLL_INTERVAL"},
		"walletlink.url":              {"WALLETLINK_URL"},
		"walletlink.app_name":         {"WALLETLINK_APP_NAME"},
		"walletlink.app_logo_url":     {"WALLETLINK_APP_LOGO_URL"},
		"user_agent":                  {"USER_AGENT"},
		"log_level":                   {"LOG_LEVEL"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
