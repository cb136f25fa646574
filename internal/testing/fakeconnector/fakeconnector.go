// Package fakeconnector provides an in-memory connector for tests of the connection lifecycle. It
// records activations in a shared Journal and lets the test emit chain and account changes.
package fakeconnector

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/popswap/popswap-interface/connector"
)

// Journal records connector calls across connectors in the order they happen.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) record(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the recorded calls, e.g. "injected.activate".
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return slices.Clone(j.entries)
}

// Connector is a scripted connector.
type Connector struct {
	name      string
	kind      connector.Kind
	supported []uint64
	journal   *Journal

	mu            sync.Mutex
	update        connector.Update
	activateErr   error
	authorized    bool
	authErr       error
	present       bool
	activations   int
	deactivations int
	authChecks    int
	gate          chan struct{}

	chainFeed    event.Feed
	accountsFeed event.Feed
	scope        event.SubscriptionScope
}

var (
	_ connector.Connector   = (*Connector)(nil)
	_ connector.Authorizer  = (*Connector)(nil)
	_ connector.Detector    = (*Connector)(nil)
	_ connector.EventSource = (*Connector)(nil)
)

// New returns a present, unauthorized connector that activates on chainID with account.
func New(name string, kind connector.Kind, chainID uint64, account common.Address, j *Journal) *Connector {
	return &Connector{
		name:      name,
		kind:      kind,
		supported: []uint64{chainID},
		journal:   j,
		update:    connector.Update{ChainID: chainID, Account: &account},
		present:   true,
	}
}

func (c *Connector) Name() string { return c.name }

func (c *Connector) Kind() connector.Kind { return c.kind }

func (c *Connector) SupportedChainIDs() []uint64 { return slices.Clone(c.supported) }

func (c *Connector) Present() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.present
}

func (c *Connector) IsAuthorized(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.authChecks++
	gate, authorized, err := c.gate, c.authorized, c.authErr
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	return authorized, err
}

func (c *Connector) Activate(context.Context) (connector.Update, error) {
	c.journal.record("%s.activate", c.name)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.activations++
	if c.activateErr != nil {
		return connector.Update{}, c.activateErr
	}

	return c.update, nil
}

func (c *Connector) Deactivate() {
	c.journal.record("%s.deactivate", c.name)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivations++
}

func (c *Connector) SubscribeChainChanged(ch chan<- uint64) (event.Subscription, error) {
	return c.scope.Track(c.chainFeed.Subscribe(ch)), nil
}

func (c *Connector) SubscribeAccountsChanged(ch chan<- []common.Address) (event.Subscription, error) {
	return c.scope.Track(c.accountsFeed.Subscribe(ch)), nil
}

// EmitChainChanged delivers chainID to every chain subscriber and returns how many received it.
func (c *Connector) EmitChainChanged(chainID uint64) int { return c.chainFeed.Send(chainID) }

// EmitAccountsChanged delivers accounts to every accounts subscriber and returns how many received it.
func (c *Connector) EmitAccountsChanged(accounts []common.Address) int {
	return c.accountsFeed.Send(accounts)
}

// Subscriptions returns the number of live chain and accounts subscriptions.
func (c *Connector) Subscriptions() int { return c.scope.Count() }

func (c *Connector) SetActivateErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activateErr = err
}

func (c *Connector) SetAuthorized(authorized bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorized, c.authErr = authorized, err
}

func (c *Connector) SetPresent(present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.present = present
}

// HoldAuthorization makes IsAuthorized block until the returned function is called.
func (c *Connector) HoldAuthorization() (release func()) {
	gate := make(chan struct{})
	c.mu.Lock()
	c.gate = gate
	c.mu.Unlock()

	var once sync.Once

	return func() { once.Do(func() { close(gate) }) }
}

func (c *Connector) Activations() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.activations
}

func (c *Connector) Deactivations() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.deactivations
}

func (c *Connector) AuthorizationChecks() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.authChecks
}
