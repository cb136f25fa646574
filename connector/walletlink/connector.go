// Package walletlink implements the hosted-wallet link connector: the wallet lives behind a hosted
// JSON-RPC endpoint and the exchange identifies itself with its name and logo.
package walletlink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/connector/internal/eip1193"
	"github.com/popswap/popswap-interface/pkg/logger"
)

const (
	HeaderAppName    = "X-App-Name"
	HeaderAppLogoURL = "X-App-Logo-Url"
)

// Config holds the configuration of the hosted-wallet link.
type Config struct {
	// Required: hosted wallet endpoint.
	URL string
	// Required: name shown to the user in the wallet.
	AppName string
	// Optional: logo shown next to the name.
	AppLogoURL string
	// Optional: chains accepted through this connector. Empty accepts any chain.
	SupportedChainIDs []uint64
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

func (c Config) validate() error {
	if c.URL == "" {
		return errors.New("wallet link URL is required")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid wallet link URL: %w", err)
	}
	if c.AppName == "" {
		return errors.New("app name is required")
	}

	return nil
}

// Connector connects to the hosted wallet.
type Connector struct {
	cfg  Config
	lggr logger.Logger

	mu     sync.Mutex
	client *rpc.Client
}

var _ connector.Connector = (*Connector)(nil)

// New creates the hosted-wallet connector without dialing.
func New(cfg Config) (*Connector, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid wallet link config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	cfg.SupportedChainIDs = slices.Clone(cfg.SupportedChainIDs)

	return &Connector{cfg: cfg, lggr: cfg.Logger}, nil
}

func (c *Connector) Name() string { return "WalletLink" }

func (c *Connector) Kind() connector.Kind { return connector.KindWalletLink }

func (c *Connector) SupportedChainIDs() []uint64 { return slices.Clone(c.cfg.SupportedChainIDs) }

// Activate dials the hosted wallet and requests account access.
func (c *Connector) Activate(ctx context.Context) (connector.Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		var client *rpc.Client
		err := retry.Do(func() error {
			var err error
			client, err = rpc.DialOptions(ctx, c.cfg.URL,
				rpc.WithHeader(HeaderAppName, c.cfg.AppName),
				rpc.WithHeader(HeaderAppLogoURL, c.cfg.AppLogoURL),
			)

			return err
		}, retry.Context(ctx), retry.Attempts(1), retry.LastErrorOnly(true))
		if err != nil {
			return connector.Update{}, fmt.Errorf("failed to dial hosted wallet: %w", err)
		}
		c.client = client
	}

	update, err := eip1193.Connect(ctx, c, c.client)
	if err != nil {
		return connector.Update{}, err
	}
	c.lggr.Infow("Hosted wallet linked", "app", c.cfg.AppName, "chainID", update.ChainID)

	return update, nil
}

// Deactivate closes the link.
func (c *Connector) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}
