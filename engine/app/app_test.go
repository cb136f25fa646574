package app

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/internal/testing/fakewallet"
	"github.com/popswap/popswap-interface/pkg/logger"
	"github.com/popswap/popswap-interface/web3/autoconnect"
	"github.com/popswap/popswap-interface/web3/chainevents"
)

var testAccount = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func testConfig(networkURL, injectedURL string) *config.Config {
	return &config.Config{
		NetworkURL: networkURL,
		ChainID:    1213,
		Injected: config.InjectedConfig{
			URL:               injectedURL,
			PollInterval:      10 * time.Millisecond,
			SupportedChainIDs: []uint64{1213},
		},
		WalletConnect: config.WalletConnectConfig{
			RPCURL:       networkURL,
			PollInterval: time.Second,
		},
		WalletLink: config.WalletLinkConfig{
			URL:     networkURL,
			AppName: config.DefaultAppName,
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()

	a, err := New(cfg, logger.Test(t), opts...)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return a
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		giveCfg   *config.Config
		wantErr   string
		wantErrIs error
	}{
		{
			name:    "nil config",
			wantErr: "config is required",
		},
		{
			name:      "missing network URL",
			giveCfg:   testConfig("", ""),
			wantErrIs: config.ErrMissingNetworkURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.giveCfg, logger.Nop())
			require.Error(t, err)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestNew_buildsEverythingIdle(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	a := newTestApp(t, testConfig(network.URL, ""), WithQRWriter(&bytes.Buffer{}))

	assert.Equal(t, autoconnect.Untried, a.AutoConnect.Status())
	assert.Equal(t, chainevents.Idle, a.Listener.Mode())
	assert.False(t, a.Resolver.State().Active)
	assert.Equal(t, "user", a.User.Name())
	assert.Equal(t, "NETWORK", a.Network.Name())
	assert.False(t, a.Registry.Injected.Present())
	assert.Zero(t, network.Calls("eth_chainId"))
}

func TestApp_Start_authorizedWallet(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)
	wallet.Authorize()

	a := newTestApp(t, testConfig(network.URL, wallet.URL))

	s := a.Start(t.Context())
	require.True(t, s.Active)
	assert.Equal(t, connector.KindInjected, s.Connector.Kind())
	assert.Equal(t, uint64(1213), s.ChainID)
	require.NotNil(t, s.Account)
	assert.Equal(t, testAccount, *s.Account)

	assert.True(t, a.AutoConnect.Tried())
	assert.True(t, a.Network.State().Active, "the network context is activated regardless")
	assert.Equal(t, chainevents.Idle, a.Listener.Mode())
}

func TestApp_Start_fallsBackToNetwork(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	a := newTestApp(t, testConfig(network.URL, wallet.URL))

	s := a.Start(t.Context())
	require.True(t, s.Active)
	assert.Equal(t, connector.KindNetwork, s.Connector.Kind())
	assert.Nil(t, s.Account)
	assert.False(t, a.User.State().Active)
	assert.Zero(t, wallet.Calls("eth_requestAccounts"))
	assert.Equal(t, chainevents.Listening, a.Listener.Mode())
}

func TestApp_Start_networkFailureIsRecorded(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 56)
	a := newTestApp(t, testConfig(network.URL, ""))

	s := a.Start(t.Context())
	assert.False(t, s.Active)
	require.Error(t, a.Network.State().Err)
	assert.True(t, a.AutoConnect.Tried())
}

func TestApp_Start_mobileActivatesWithoutAuthorization(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	a := newTestApp(t, testConfig(network.URL, wallet.URL), WithMobile(true))

	s := a.Start(t.Context())
	require.True(t, s.Active)
	assert.Equal(t, connector.KindInjected, s.Connector.Kind())
	assert.Equal(t, 1, wallet.Calls("eth_requestAccounts"))
}

func TestApp_Start_mobileFromUserAgent(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	cfg := testConfig(network.URL, wallet.URL)
	cfg.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 " +
		"(KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	a := newTestApp(t, cfg)

	s := a.Start(t.Context())
	require.True(t, s.Active)
	assert.Equal(t, connector.KindInjected, s.Connector.Kind())
}

func TestApp_listenerConnectsWhenWalletUnlocks(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	a := newTestApp(t, testConfig(network.URL, wallet.URL))
	require.Equal(t, connector.KindNetwork, a.Start(t.Context()).Connector.Kind())

	// the wallet starts exposing its account, which the provider reports as an accounts change
	wallet.Authorize()

	require.Eventually(t, func() bool {
		return a.User.State().Active
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, connector.KindInjected, a.Resolver.State().Connector.Kind())
	require.Eventually(t, func() bool {
		return a.Listener.Mode() == chainevents.Idle
	}, 5*time.Second, 10*time.Millisecond)
}

func TestApp_Start_suppressedListener(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)

	a := newTestApp(t, testConfig(network.URL, wallet.URL), WithSuppressedListener())

	a.Start(t.Context())
	assert.Equal(t, chainevents.Idle, a.Listener.Mode())
}

func TestApp_Close(t *testing.T) {
	t.Parallel()

	network := fakewallet.New(t, 1213)
	wallet := fakewallet.New(t, 1213, testAccount)
	wallet.Authorize()

	a, err := New(testConfig(network.URL, wallet.URL), logger.Test(t))
	require.NoError(t, err)

	require.True(t, a.Start(t.Context()).Active)
	a.Close()

	assert.False(t, a.User.State().Active)
	assert.False(t, a.Network.State().Active)
	assert.False(t, a.Resolver.State().Active)
	assert.Equal(t, chainevents.Idle, a.Listener.Mode())
}
