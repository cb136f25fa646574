package connector

import (
	"context"
	"errors"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

var (
	// ErrNoProvider is returned when the provider backing a connector is not available at runtime.
	ErrNoProvider = errors.New("no provider available")
	// ErrUnsupportedChainID is returned when the wallet is connected to a chain the connector does not support.
	ErrUnsupportedChainID = errors.New("unsupported chain id")
	// ErrUserRejected is returned when the user refused the connection request in their wallet.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrNoAccounts is returned when the wallet granted access but exposes no account.
	ErrNoAccounts = errors.New("no accounts returned by the wallet")
)

// Kind identifies the connection strategy of a connector.
type Kind string

const (
	KindInjected      Kind = "injected"
	KindNetwork       Kind = "network"
	KindWalletConnect Kind = "walletconnect"
	KindWalletLink    Kind = "walletlink"
)

// Caller is the JSON-RPC surface handed to the rest of the application once a connector is active.
// *rpc.Client from go-ethereum satisfies it.
type Caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Update is what a connector reports when it activates.
type Update struct {
	Provider Caller
	ChainID  uint64
	// Account is nil for read-only connectors.
	Account *common.Address
}

// Connector is a wallet-connection strategy. Connectors are constructed once by the application root
// and must not perform network I/O before Activate is called.
type Connector interface {
	Name() string
	Kind() Kind
	SupportedChainIDs() []uint64
	Activate(ctx context.Context) (Update, error)
	Deactivate()
}

// Authorizer is implemented by connectors that can tell whether the user already granted access,
// without prompting.
type Authorizer interface {
	IsAuthorized(ctx context.Context) (bool, error)
}

// Detector is implemented by connectors whose provider may be missing at runtime.
type Detector interface {
	Present() bool
}

// EventSource is implemented by connectors that report chain and account changes made in the wallet.
// Both methods return ErrNoProvider when the connector has nothing to subscribe to.
type EventSource interface {
	SubscribeChainChanged(ch chan<- uint64) (event.Subscription, error)
	SubscribeAccountsChanged(ch chan<- []common.Address) (event.Subscription, error)
}

// Supports reports whether chainID is accepted by c. A connector without a supported list accepts any
// chain.
func Supports(c Connector, chainID uint64) bool {
	ids := c.SupportedChainIDs()
	if len(ids) == 0 {
		return true
	}

	return slices.Contains(ids, chainID)
}

// IdleSubscription returns a subscription that never delivers anything and ends when unsubscribed.
func IdleSubscription() event.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	})
}
