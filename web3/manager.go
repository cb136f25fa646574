package web3

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/segmentio/ksuid"

	"github.com/popswap/popswap-interface/chain"
	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// Manager owns one connection context. At most one connector is active at a time: activating a
// connector fully deactivates the previous one first.
type Manager struct {
	name string
	lggr logger.Logger

	// activateMu serializes Activate, TryActivate and Deactivate.
	activateMu sync.Mutex

	// publishMu orders state updates with their delivery on feed.
	publishMu sync.Mutex
	mu        sync.RWMutex
	state     State
	gen       uint64
	watch     *event.SubscriptionScope
	quit      chan struct{}

	feed event.Feed
}

// NewManager creates an inactive Manager.
func NewManager(name string, lggr logger.Logger) *Manager {
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Manager{name: name, lggr: lggr}
}

// Name returns the name the context was created with, such as NetworkContextName.
func (m *Manager) Name() string { return m.name }

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state
}

// SubscribeState delivers every new snapshot. Subscribers must keep receiving: delivery blocks
// until every subscriber took the value.
func (m *Manager) SubscribeState(ch chan<- State) event.Subscription {
	return m.feed.Subscribe(ch)
}

// Activate activates c. A failure is recorded in the state and returned.
func (m *Manager) Activate(ctx context.Context, c connector.Connector) error {
	return m.activate(ctx, c, false)
}

// TryActivate activates c. A failure is returned without being recorded. If c was already the
// current connector its state and event subscriptions are kept, otherwise the state is left inactive.
func (m *Manager) TryActivate(ctx context.Context, c connector.Connector) error {
	return m.activate(ctx, c, true)
}

// Deactivate deactivates the current connector and resets the state.
func (m *Manager) Deactivate() {
	m.activateMu.Lock()
	defer m.activateMu.Unlock()

	prev := m.State().Connector
	if prev == nil {
		return
	}
	m.stopWatching()
	prev.Deactivate()
	m.publish(func(s *State) { *s = State{} })
	m.lggr.Infow("Deactivated", "connector", prev.Name())
}

func (m *Manager) activate(ctx context.Context, c connector.Connector, silent bool) error {
	m.activateMu.Lock()
	defer m.activateMu.Unlock()

	id := ksuid.New().String()
	lggr := m.lggr.Named(c.Name())

	if prev := m.State().Connector; prev != nil && prev != c {
		m.stopWatching()
		prev.Deactivate()
		m.publish(func(s *State) { *s = State{} })
		lggr.Debugw("Deactivated previous connector", "activation", id, "previous", prev.Name())
	}

	// a connector being activated again keeps its watchers until the new activation succeeds
	update, err := c.Activate(ctx)
	if err != nil {
		if silent {
			return err
		}
		m.stopWatching()
		m.publish(func(s *State) { *s = State{Connector: c, Err: err} })
		lggr.Errorw("Activation failed", "activation", id, "err", err)

		return err
	}

	m.stopWatching()
	gen := m.publish(func(s *State) {
		*s = State{
			Connector: c,
			Provider:  update.Provider,
			ChainID:   update.ChainID,
			Account:   update.Account,
			Active:    true,
		}
	})
	lggr.Infow("Activated", "activation", id, "chain", chain.Name(update.ChainID), "account", update.Account)

	if src, ok := c.(connector.EventSource); ok {
		if err := m.startWatching(c, src, gen); err != nil {
			lggr.Debugw("Connector events unavailable", "activation", id, "err", err)
		}
	}

	return nil
}

// publish applies fn to the state and delivers the result. It returns the generation of the new
// state.
func (m *Manager) publish(fn func(*State)) uint64 {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.mu.Lock()
	fn(&m.state)
	m.gen++
	gen, s := m.gen, m.state
	m.mu.Unlock()

	m.feed.Send(s)

	return gen
}

// update applies fn only if no newer state was published since gen. It returns the generation of
// the resulting state.
func (m *Manager) update(gen uint64, fn func(*State)) (uint64, bool) {
	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return gen, false
	}
	fn(&m.state)
	m.gen++
	next, s := m.gen, m.state
	m.mu.Unlock()

	m.feed.Send(s)

	return next, true
}

func (m *Manager) startWatching(c connector.Connector, src connector.EventSource, gen uint64) error {
	scope := &event.SubscriptionScope{}
	chains := make(chan uint64)
	accounts := make(chan []common.Address)

	chainSub, err := src.SubscribeChainChanged(chains)
	if err != nil {
		return err
	}
	scope.Track(chainSub)
	accountsSub, err := src.SubscribeAccountsChanged(accounts)
	if err != nil {
		scope.Close()
		return err
	}
	scope.Track(accountsSub)

	quit := make(chan struct{})
	m.mu.Lock()
	m.watch, m.quit = scope, quit
	m.mu.Unlock()

	go m.watchLoop(c, gen, scope, chains, accounts, chainSub, accountsSub, quit)

	return nil
}

func (m *Manager) watchLoop(c connector.Connector, gen uint64, scope *event.SubscriptionScope, chains <-chan uint64,
	accounts <-chan []common.Address, chainSub, accountsSub event.Subscription, quit <-chan struct{}) {
	defer scope.Close()

	for {
		select {
		case <-quit:
			return
		case err := <-chainSub.Err():
			if err != nil {
				m.lggr.Warnw("Chain subscription failed", "connector", c.Name(), "err", err)
			}
			return
		case err := <-accountsSub.Err():
			if err != nil {
				m.lggr.Warnw("Accounts subscription failed", "connector", c.Name(), "err", err)
			}
			return
		case id := <-chains:
			gen = m.onChainChanged(c, gen, id)
		case list := <-accounts:
			if len(list) == 0 {
				m.onDisconnected(c, gen)
				return
			}
			gen = m.onAccountsChanged(gen, list)
		}
	}
}

func (m *Manager) onChainChanged(c connector.Connector, gen, chainID uint64) uint64 {
	next, ok := m.update(gen, func(s *State) {
		s.ChainID = chainID
		if connector.Supports(c, chainID) {
			s.Err, s.Active = nil, true
		} else {
			s.Err = fmt.Errorf("%w: %d", connector.ErrUnsupportedChainID, chainID)
			s.Active = false
		}
	})
	if ok {
		m.lggr.Infow("Chain changed", "connector", c.Name(), "chain", chain.Name(chainID))
	}

	return next
}

func (m *Manager) onAccountsChanged(gen uint64, accounts []common.Address) uint64 {
	account := accounts[0]
	next, _ := m.update(gen, func(s *State) { s.Account = &account })

	return next
}

// onDisconnected handles the wallet dropping every account: the connector is deactivated and the
// context reset, unless a newer activation already replaced it.
func (m *Manager) onDisconnected(c connector.Connector, gen uint64) {
	if _, ok := m.update(gen, func(s *State) { *s = State{} }); ok {
		c.Deactivate()
		m.lggr.Infow("Wallet disconnected", "connector", c.Name())
	}
}

// stopWatching releases the connector event subscriptions of the current activation. It does not
// wait for the watch loop, which exits on its own.
func (m *Manager) stopWatching() {
	m.mu.Lock()
	scope, quit := m.watch, m.quit
	m.watch, m.quit = nil, nil
	m.mu.Unlock()

	if quit != nil {
		close(quit)
	}
	if scope != nil {
		scope.Close()
	}
}
