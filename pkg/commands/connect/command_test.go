package connect

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popswap/popswap-interface/engine/app"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/internal/testing/fakewallet"
	"github.com/popswap/popswap-interface/pkg/logger"
)

var testAccount = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func testConfig(networkURL, walletURL string) *config.Config {
	return &config.Config{
		NetworkURL: networkURL,
		ChainID:    1213,
		Injected: config.InjectedConfig{
			URL:               walletURL,
			PollInterval:      10 * time.Millisecond,
			SupportedChainIDs: []uint64{1213},
		},
		WalletConnect: config.WalletConnectConfig{
			RPCURL:       networkURL,
			PollInterval: time.Second,
		},
		WalletLink: config.WalletLinkConfig{
			URL:     walletURL,
			AppName: config.DefaultAppName,
		},
	}
}

func loaderFor(cfg *config.Config) ConfigLoaderFunc {
	return func(string) (*config.Config, error) { return cfg, nil }
}

func execute(t *testing.T, cfg Config, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "connect", cmd.Use)
	assert.Equal(t, "Connect a wallet and print the active connection", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)

	tests := []struct {
		name          string
		wantShorthand string
		wantDefault   string
	}{
		{name: "config", wantShorthand: "c", wantDefault: DefaultConfigPath},
		{name: "timeout", wantShorthand: "t", wantDefault: DefaultTimeout.String()},
		{name: "suppress", wantDefault: "false"},
		{name: "wallet", wantShorthand: "w", wantDefault: ""},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.name)
		require.NotNil(t, f, tt.name)
		assert.Equal(t, tt.wantShorthand, f.Shorthand, tt.name)
		assert.Equal(t, tt.wantDefault, f.DefValue, tt.name)
	}
}

func TestConnect_networkFallback(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)

	out, err := execute(t, Config{
		Logger: logger.Test(t),
		Deps:   Deps{ConfigLoader: loaderFor(testConfig(network.URL, ""))},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Connector: Network")
	assert.Contains(t, out, "Chain:     popcateum-mainnet (1213)")
	assert.Contains(t, out, "Account:   none")
}

func TestConnect_authorizedWallet(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)
	wallet.Authorize()

	out, err := execute(t, Config{
		Logger: logger.Test(t),
		Deps:   Deps{ConfigLoader: loaderFor(testConfig(network.URL, wallet.URL))},
	}, "--suppress")
	require.NoError(t, err)

	assert.Contains(t, out, "Connector: Injected")
	assert.Contains(t, out, "Account:   "+testAccount.Hex())
}

func TestConnect_walletFlag(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	out, err := execute(t, Config{
		Logger: logger.Test(t),
		Deps:   Deps{ConfigLoader: loaderFor(testConfig(network.URL, wallet.URL))},
	}, "--wallet", "walletlink", "--suppress")
	require.NoError(t, err)

	assert.Contains(t, out, "Connector: WalletLink")
	assert.Contains(t, out, "Account:   "+testAccount.Hex())
	assert.Equal(t, 1, wallet.Calls("eth_requestAccounts"))
}

func TestConnect_errors(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wrongChain := fakewallet.New(t, 56)
	rejecting := fakewallet.New(t, 1213, testAccount)
	rejecting.RejectRequests(true)

	tests := []struct {
		name    string
		giveCfg Config
		args    []string
		wantErr string
	}{
		{
			name: "config load failure",
			giveCfg: Config{Deps: Deps{
				ConfigLoader: func(string) (*config.Config, error) { return nil, errors.New("boom") },
			}},
			wantErr: "failed to load config: boom",
		},
		{
			name:    "missing network URL",
			giveCfg: Config{Deps: Deps{ConfigLoader: loaderFor(testConfig("", ""))}},
			wantErr: "NETWORK_URL must be a defined environment variable",
		},
		{
			name: "app factory failure",
			giveCfg: Config{Deps: Deps{
				ConfigLoader: loaderFor(testConfig(network.URL, "")),
				AppFactory: func(*config.Config, logger.Logger, ...app.Option) (*app.App, error) {
					return nil, errors.New("no connectors")
				},
			}},
			wantErr: "failed to build connectors: no connectors",
		},
		{
			name:    "unknown wallet",
			giveCfg: Config{Deps: Deps{ConfigLoader: loaderFor(testConfig(network.URL, ""))}},
			args:    []string{"--wallet", "ledger"},
			wantErr: `unknown wallet "ledger"`,
		},
		{
			name:    "wallet rejects",
			giveCfg: Config{Deps: Deps{ConfigLoader: loaderFor(testConfig(network.URL, rejecting.URL))}},
			args:    []string{"-w", "injected"},
			wantErr: "failed to connect Injected",
		},
		{
			name:    "network on another chain",
			giveCfg: Config{Deps: Deps{ConfigLoader: loaderFor(testConfig(wrongChain.URL, ""))}},
			wantErr: "no active connection",
		},
		{
			name:    "unexpected argument",
			giveCfg: Config{},
			args:    []string{"extra"},
			wantErr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.giveCfg, tt.args...)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
