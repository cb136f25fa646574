package registry

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// countingServer counts every request it receives.
func countingServer(t *testing.T) (string, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv.URL, &hits
}

func testConfig(url string) *config.Config {
	return &config.Config{
		NetworkURL: url,
		ChainID:    1213,
		Injected: config.InjectedConfig{
			URL:               url,
			PollInterval:      time.Second,
			SupportedChainIDs: []uint64{1213, 1213},
		},
		WalletConnect: config.WalletConnectConfig{
			Bridge:       url,
			RPCURL:       url,
			QRCode:       true,
			PollInterval: time.Second,
		},
		WalletLink: config.WalletLinkConfig{
			URL:     url,
			AppName: "PopSwap",
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	url, hits := countingServer(t)

	r, err := New(testConfig(url), Options{}, logger.Test(t))
	require.NoError(t, err)
	t.Cleanup(r.Close)

	assert.Zero(t, hits.Load())
	assert.True(t, r.Injected.Present())
	assert.Equal(t, []uint64{1213}, r.Injected.SupportedChainIDs())
	assert.Equal(t, uint64(1213), r.Network.ChainID())
	assert.Equal(t, url, r.WalletConnect.Bridge())
}

func TestNew_missingNetworkURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	_, err := New(cfg, Options{}, logger.Nop())
	require.ErrorIs(t, err, config.ErrMissingNetworkURL)
}

func TestNew_invalidConnectorConfig(t *testing.T) {
	t.Parallel()

	url, _ := countingServer(t)
	cfg := testConfig(url)
	cfg.WalletLink.AppName = ""

	_, err := New(cfg, Options{}, logger.Nop())
	require.ErrorContains(t, err, "failed to build walletlink connector")
}

func TestNew_withoutInjectedProvider(t *testing.T) {
	t.Parallel()

	url, _ := countingServer(t)
	cfg := testConfig(url)
	cfg.Injected.URL = ""

	r, err := New(cfg, Options{}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(r.Close)

	assert.False(t, r.Injected.Present())
	_, err = r.Injected.Activate(t.Context())
	require.ErrorIs(t, err, connector.ErrNoProvider)
}

func TestRegistry_lookup(t *testing.T) {
	t.Parallel()

	url, _ := countingServer(t)
	r, err := New(testConfig(url), Options{}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(r.Close)

	assert.Len(t, r.All(), 4)

	wallets := r.Wallets()
	require.Len(t, wallets, 3)
	for _, c := range wallets {
		assert.NotEqual(t, connector.KindNetwork, c.Kind())
	}

	tests := []struct {
		give     string
		wantKind connector.Kind
		wantOK   bool
	}{
		{give: "Injected", wantKind: connector.KindInjected, wantOK: true},
		{give: "walletconnect", wantKind: connector.KindWalletConnect, wantOK: true},
		{give: "WalletLink", wantKind: connector.KindWalletLink, wantOK: true},
		{give: "network", wantKind: connector.KindNetwork, wantOK: true},
		{give: "Ledger", wantOK: false},
	}

	for _, tt := range tests {
		c, ok := r.ByName(tt.give)
		require.Equal(t, tt.wantOK, ok, tt.give)
		if ok {
			assert.Equal(t, tt.wantKind, c.Kind())
		}
	}
}
