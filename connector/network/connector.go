// Package network implements the read-only connector used when no wallet is connected. It talks to a
// public RPC endpoint of the chain the exchange is deployed on.
package network

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/pkg/logger"
)

const (
	// DefaultDialAttempts is one: the connection is attempted once per activation.
	DefaultDialAttempts = 1
	DefaultDialDelay    = 500 * time.Millisecond
	DefaultDialTimeout  = 10 * time.Second
)

var ErrChainIDMismatch = errors.New("rpc endpoint serves a different chain")

// RetryConfig controls how the endpoint is dialed.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: DefaultDialAttempts,
		Delay:    DefaultDialDelay,
		Timeout:  DefaultDialTimeout,
	}
}

// Config holds the configuration of the network connector.
type Config struct {
	// Required: RPC URL per chain id.
	URLs map[uint64]string
	// Optional: chain used on activation. Defaults to the lowest chain id in URLs.
	DefaultChainID uint64
	// Optional: dial behavior, defaults to a single attempt.
	Retry *RetryConfig
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

func (c Config) validate() error {
	if len(c.URLs) == 0 {
		return errors.New("at least one network URL is required")
	}
	for id, url := range c.URLs {
		if url == "" {
			return fmt.Errorf("empty network URL for chain %d", id)
		}
	}
	if c.DefaultChainID != 0 {
		if _, ok := c.URLs[c.DefaultChainID]; !ok {
			return fmt.Errorf("no network URL for default chain %d", c.DefaultChainID)
		}
	}

	return nil
}

// Connector is a read-only connector over a chain RPC endpoint.
type Connector struct {
	urls  map[uint64]string
	retry RetryConfig
	lggr  logger.Logger

	mu      sync.Mutex
	current uint64
	client  *rpc.Client
	active  bool

	chainFeed event.Feed
}

var (
	_ connector.Connector   = (*Connector)(nil)
	_ connector.EventSource = (*Connector)(nil)
	_ connector.Caller      = (*Connector)(nil)
)

// New creates the network connector. It does not dial.
func New(cfg Config) (*Connector, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid network connector config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	retryCfg := defaultRetryConfig()
	if cfg.Retry != nil {
		retryCfg = *cfg.Retry
	}
	// retry-go treats zero attempts as unbounded
	if retryCfg.Attempts == 0 {
		retryCfg.Attempts = DefaultDialAttempts
	}
	if retryCfg.Timeout <= 0 {
		retryCfg.Timeout = DefaultDialTimeout
	}

	current := cfg.DefaultChainID
	if current == 0 {
		current = slices.Min(slices.Collect(maps.Keys(cfg.URLs)))
	}

	return &Connector{
		urls:    maps.Clone(cfg.URLs),
		retry:   retryCfg,
		lggr:    cfg.Logger,
		current: current,
	}, nil
}

func (c *Connector) Name() string { return "Network" }

func (c *Connector) Kind() connector.Kind { return connector.KindNetwork }

// SupportedChainIDs returns the chains with a configured URL, in ascending order.
func (c *Connector) SupportedChainIDs() []uint64 {
	return slices.Sorted(maps.Keys(c.urls))
}

// ChainID returns the chain the connector is pointed at.
func (c *Connector) ChainID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// Activate dials the endpoint of the current chain and checks that it serves that chain. The
// returned provider is the connector itself, so it keeps following ChangeChainID.
func (c *Connector) Activate(ctx context.Context) (connector.Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.connect(ctx); err != nil {
		return connector.Update{}, err
	}
	c.active = true

	return connector.Update{Provider: c, ChainID: c.current}, nil
}

// CallContext sends a JSON-RPC request to the endpoint of the current chain. After a chain change
// the new endpoint is dialed on first use.
func (c *Connector) CallContext(ctx context.Context, result any, method string, args ...any) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return fmt.Errorf("%w: network connector is not active", connector.ErrNoProvider)
	}
	client, err := c.connect(ctx)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	return client.CallContext(ctx, result, method, args...)
}

// connect returns the open client, dialing and verifying the current chain's endpoint when there is
// none. c.mu must be held.
func (c *Connector) connect(ctx context.Context) (*rpc.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	url := c.urls[c.current]
	client, err := c.dial(ctx, url)
	if err != nil {
		return nil, err
	}
	remote, err := ethclient.NewClient(client).ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id from %s: %w", url, err)
	}
	if !remote.IsUint64() || remote.Uint64() != c.current {
		client.Close()
		return nil, fmt.Errorf("%w: want %d, got %s", ErrChainIDMismatch, c.current, remote)
	}
	c.client = client

	return client, nil
}

// Deactivate closes the connection. A later Activate dials again.
func (c *Connector) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = false
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

// ChangeChainID points the connector at another configured chain. The open connection, if any, is
// dropped and subscribers are notified.
func (c *Connector) ChangeChainID(chainID uint64) error {
	c.mu.Lock()
	if _, ok := c.urls[chainID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", connector.ErrUnsupportedChainID, chainID)
	}
	if chainID == c.current {
		c.mu.Unlock()
		return nil
	}
	c.current = chainID
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	c.mu.Unlock()

	c.chainFeed.Send(chainID)

	return nil
}

func (c *Connector) SubscribeChainChanged(ch chan<- uint64) (event.Subscription, error) {
	return c.chainFeed.Subscribe(ch), nil
}

// SubscribeAccountsChanged returns a subscription that never fires: the network connector has no
// accounts.
func (c *Connector) SubscribeAccountsChanged(chan<- []common.Address) (event.Subscription, error) {
	return connector.IdleSubscription(), nil
}

func (c *Connector) dial(ctx context.Context, url string) (*rpc.Client, error) {
	var client *rpc.Client
	err := retry.Do(func() error {
		dialCtx, cancel := context.WithTimeout(ctx, c.retry.Timeout)
		defer cancel()

		var err error
		client, err = rpc.DialContext(dialCtx, url)

		return err
	},
		retry.Context(ctx),
		retry.Attempts(c.retry.Attempts),
		retry.Delay(c.retry.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			c.lggr.Warnw("Failed to dial network endpoint", "url", url, "attempt", attempt+1, "err", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	return client, nil
}
