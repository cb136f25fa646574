package injected

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/internal/testing/fakewallet"
	"github.com/popswap/popswap-interface/pkg/logger"
)

var testAccount = common.HexToAddress("0x00000000000000000000000000000000000000a1")

func newTestConnector(t *testing.T, w *fakewallet.Wallet) (*Connector, *RPCProvider) {
	t.Helper()

	p, err := NewRPCProvider(RPCProviderConfig{
		URL:          w.URL,
		PollInterval: 10 * time.Millisecond,
		Logger:       logger.Test(t),
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return New(Config{
		SupportedChainIDs: []uint64{1213},
		Provider:          p,
		Logger:            logger.Test(t),
	}), p
}

func Test_Connector_IsAuthorized(t *testing.T) {
	t.Parallel()

	w := fakewallet.New(t, 1213, testAccount)
	c, _ := newTestConnector(t, w)

	ok, err := c.IsAuthorized(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)

	w.Authorize()
	ok, err = c.IsAuthorized(t.Context())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, w.Calls("eth_requestAccounts"), "authorization check must not prompt")
}

func Test_Connector_Activate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		giveChainID uint64
		giveReject  bool
		wantErr     error
	}{
		{name: "supported chain", giveChainID: 1213},
		{name: "unsupported chain", giveChainID: 56, wantErr: connector.ErrUnsupportedChainID},
		{name: "user rejects", giveChainID: 1213, giveReject: true, wantErr: connector.ErrUserRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := fakewallet.New(t, tt.giveChainID, testAccount)
			w.RejectRequests(tt.giveReject)
			c, _ := newTestConnector(t, w)

			update, err := c.Activate(t.Context())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, uint64(1213), update.ChainID)
			assert.Equal(t, testAccount, *update.Account)
			assert.NotNil(t, update.Provider)
		})
	}
}

func Test_Connector_withoutProvider(t *testing.T) {
	t.Parallel()

	c := New(Config{SupportedChainIDs: []uint64{1213}})

	assert.False(t, c.Present())

	ok, err := c.IsAuthorized(t.Context())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Activate(t.Context())
	require.ErrorIs(t, err, connector.ErrNoProvider)

	_, err = c.SubscribeChainChanged(make(chan uint64))
	require.ErrorIs(t, err, connector.ErrNoProvider)
	_, err = c.SubscribeAccountsChanged(make(chan []common.Address))
	require.ErrorIs(t, err, connector.ErrNoProvider)
}

func Test_RPCProvider_reportsChanges(t *testing.T) {
	t.Parallel()

	w := fakewallet.New(t, 1213, testAccount)
	w.Authorize()
	c, _ := newTestConnector(t, w)

	chainCh := make(chan uint64, 1)
	chainSub, err := c.SubscribeChainChanged(chainCh)
	require.NoError(t, err)
	defer chainSub.Unsubscribe()

	accountsCh := make(chan []common.Address, 1)
	accountsSub, err := c.SubscribeAccountsChanged(accountsCh)
	require.NoError(t, err)
	defer accountsSub.Unsubscribe()

	// let the poller take its baseline sample
	require.Eventually(t, func() bool { return w.Calls("eth_chainId") > 0 }, time.Second, 5*time.Millisecond)

	w.SetChainID(1)
	select {
	case got := <-chainCh:
		assert.Equal(t, uint64(1), got)
	case <-time.After(2 * time.Second):
		t.Fatal("no chain change delivered")
	}

	w.Revoke()
	select {
	case got := <-accountsCh:
		assert.Empty(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no accounts change delivered")
	}
}

func Test_RPCProvider_stopsPollingWithoutSubscribers(t *testing.T) {
	t.Parallel()

	w := fakewallet.New(t, 1213, testAccount)
	_, p := newTestConnector(t, w)

	sub := p.SubscribeChainChanged(make(chan uint64, 1))
	require.Eventually(t, func() bool { return w.Calls("eth_chainId") > 0 }, time.Second, 5*time.Millisecond)

	sub.Unsubscribe()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()

		return !p.watching
	}, time.Second, 5*time.Millisecond)
}

func Test_RPCProvider_closed(t *testing.T) {
	t.Parallel()

	w := fakewallet.New(t, 1213, testAccount)
	_, p := newTestConnector(t, w)
	p.Close()

	sub := p.SubscribeChainChanged(make(chan uint64))
	_, open := <-sub.Err()
	assert.False(t, open)

	var id string
	require.Error(t, p.CallContext(t.Context(), &id, "eth_chainId"))
}

func Test_NewRPCProvider_requiresURL(t *testing.T) {
	t.Parallel()

	_, err := NewRPCProvider(RPCProviderConfig{})
	require.ErrorContains(t, err, "injected provider URL is required")
}
