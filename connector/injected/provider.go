package injected

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/connector/internal/eip1193"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// DefaultPollInterval is how often an RPCProvider samples the wallet for chain and account changes.
const DefaultPollInterval = 2 * time.Second

// Provider is the injected wallet boundary: a JSON-RPC endpoint that also reports chain and
// account changes made by the user in the wallet.
type Provider interface {
	connector.Caller
	SubscribeChainChanged(ch chan<- uint64) event.Subscription
	SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription
	Close()
}

// RPCProviderConfig holds the configuration of an RPCProvider.
type RPCProviderConfig struct {
	// Required: URL of the wallet JSON-RPC endpoint, e.g. a desktop wallet listening on localhost.
	URL string
	// Optional: PollInterval between two samples of eth_chainId and eth_accounts. Defaults to
	// DefaultPollInterval.
	PollInterval time.Duration
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

// RPCProvider is a Provider backed by a wallet JSON-RPC endpoint. It dials lazily on first use and
// detects chain and account changes by polling while at least one subscription is live.
type RPCProvider struct {
	url          string
	pollInterval time.Duration
	lggr         logger.Logger

	mu       sync.Mutex
	client   *rpc.Client
	watching bool
	closed   bool
	quit     chan struct{}
	wg       sync.WaitGroup

	chainFeed    event.Feed
	accountsFeed event.Feed
	scope        event.SubscriptionScope
}

var _ Provider = (*RPCProvider)(nil)

// NewRPCProvider creates an RPCProvider. No connection is made until the first call or subscription.
func NewRPCProvider(cfg RPCProviderConfig) (*RPCProvider, error) {
	if cfg.URL == "" {
		return nil, errors.New("injected provider URL is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &RPCProvider{
		url:          cfg.URL,
		pollInterval: cfg.PollInterval,
		lggr:         cfg.Logger,
		quit:         make(chan struct{}),
	}, nil
}

// CallContext performs a JSON-RPC call against the wallet.
func (p *RPCProvider) CallContext(ctx context.Context, result any, method string, args ...any) error {
	client, err := p.dial(ctx)
	if err != nil {
		return err
	}

	return client.CallContext(ctx, result, method, args...)
}

// SubscribeChainChanged delivers the new chain id every time the wallet switches network.
func (p *RPCProvider) SubscribeChainChanged(ch chan<- uint64) event.Subscription {
	return p.track(p.chainFeed.Subscribe(ch))
}

// SubscribeAccountsChanged delivers the wallet accounts every time they change. An empty slice means
// the user disconnected every account.
func (p *RPCProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return p.track(p.accountsFeed.Subscribe(ch))
}

// Close ends all subscriptions, stops polling and closes the connection.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	p.scope.Close()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

// track registers sub with the provider scope. Subscribing to a closed provider yields a
// subscription that has already ended.
func (p *RPCProvider) track(sub event.Subscription) event.Subscription {
	tracked := p.scope.Track(sub)
	if tracked == nil {
		sub.Unsubscribe()
		return event.NewSubscription(func(<-chan struct{}) error { return nil })
	}
	p.startWatching()

	return tracked
}

func (p *RPCProvider) dial(ctx context.Context) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("injected provider is closed")
	}
	if p.client != nil {
		return p.client, nil
	}

	client, err := rpc.DialContext(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial injected provider: %w", err)
	}
	p.client = client

	return client, nil
}

func (p *RPCProvider) startWatching() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.watching || p.closed {
		return
	}
	p.watching = true
	p.wg.Add(1)
	go p.watch()
}

// snapshot is one sample of the wallet state.
type snapshot struct {
	chainID  uint64
	accounts []common.Address
}

// watch polls the wallet and publishes differences between consecutive samples. It exits once the
// last subscription is gone, and is restarted by the next subscribe.
func (p *RPCProvider) watch() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	var last *snapshot
	for {
		if p.scope.Count() == 0 {
			p.mu.Lock()
			// re-check under the lock so a concurrent subscribe either sees watching=false or is counted
			if p.scope.Count() == 0 {
				p.watching = false
				p.mu.Unlock()

				return
			}
			p.mu.Unlock()
		}

		cur, err := p.sample()
		switch {
		case err != nil:
			p.lggr.Debugw("Failed to sample injected provider", "url", p.url, "err", err)
		case last == nil:
			last = &cur
		default:
			if cur.chainID != last.chainID {
				p.lggr.Debugw("Chain changed", "from", last.chainID, "to", cur.chainID)
				p.chainFeed.Send(cur.chainID)
			}
			if !slices.Equal(cur.accounts, last.accounts) {
				p.lggr.Debugw("Accounts changed", "count", len(cur.accounts))
				p.accountsFeed.Send(cur.accounts)
			}
			last = &cur
		}

		select {
		case <-p.quit:
			return
		case <-ticker.C:
		}
	}
}

func (p *RPCProvider) sample() (snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.pollInterval)
	defer cancel()

	chainID, err := eip1193.ChainID(ctx, p)
	if err != nil {
		return snapshot{}, err
	}
	accounts, err := eip1193.Accounts(ctx, p)
	if err != nil {
		return snapshot{}, err
	}

	return snapshot{chainID: chainID, accounts: accounts}, nil
}
