// Package injected implements the connector for a wallet provider injected into the user's
// environment: an EIP-1193 style JSON-RPC endpoint, typically a desktop wallet on localhost.
package injected

import (
	"context"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/connector/internal/eip1193"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// Config holds the configuration of the injected connector.
type Config struct {
	// Required: chains the exchange accepts through this connector.
	SupportedChainIDs []uint64
	// Optional: the wallet provider. A nil provider models an environment without an injected wallet:
	// the connector reports itself absent, unauthorized, and fails activation with ErrNoProvider.
	Provider Provider
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

// Connector connects to the injected wallet.
type Connector struct {
	supported []uint64
	provider  Provider
	lggr      logger.Logger
}

var (
	_ connector.Connector   = (*Connector)(nil)
	_ connector.Authorizer  = (*Connector)(nil)
	_ connector.Detector    = (*Connector)(nil)
	_ connector.EventSource = (*Connector)(nil)
)

// New creates the injected connector.
func New(cfg Config) *Connector {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Connector{
		supported: slices.Clone(cfg.SupportedChainIDs),
		provider:  cfg.Provider,
		lggr:      cfg.Logger,
	}
}

func (c *Connector) Name() string { return "Injected" }

func (c *Connector) Kind() connector.Kind { return connector.KindInjected }

func (c *Connector) SupportedChainIDs() []uint64 { return slices.Clone(c.supported) }

// Present reports whether a wallet provider exists in this environment.
func (c *Connector) Present() bool { return c.provider != nil }

// IsAuthorized reports whether the wallet already exposes an account to the site, which is the case
// after the user approved a previous connection. It never prompts the user.
func (c *Connector) IsAuthorized(ctx context.Context) (bool, error) {
	if c.provider == nil {
		return false, nil
	}

	accounts, err := eip1193.Accounts(ctx, c.provider)
	if err != nil {
		return false, err
	}

	return len(accounts) > 0, nil
}

// Activate requests account access and reads the current chain.
func (c *Connector) Activate(ctx context.Context) (connector.Update, error) {
	if c.provider == nil {
		return connector.Update{}, connector.ErrNoProvider
	}

	update, err := eip1193.Connect(ctx, c, c.provider)
	if err != nil {
		return connector.Update{}, err
	}
	c.lggr.Debugw("Injected wallet activated", "chainID", update.ChainID, "account", update.Account.Hex())

	return update, nil
}

// Deactivate is a no-op: an injected wallet cannot be disconnected from the site side. Callers drop
// their subscriptions instead.
func (c *Connector) Deactivate() {}

func (c *Connector) SubscribeChainChanged(ch chan<- uint64) (event.Subscription, error) {
	if c.provider == nil {
		return nil, connector.ErrNoProvider
	}

	return c.provider.SubscribeChainChanged(ch), nil
}

func (c *Connector) SubscribeAccountsChanged(ch chan<- []common.Address) (event.Subscription, error) {
	if c.provider == nil {
		return nil, connector.ErrNoProvider
	}

	return c.provider.SubscribeAccountsChanged(ch), nil
}
