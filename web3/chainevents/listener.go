// Package chainevents re-attempts the injected wallet connection when the user switches chain or
// unlocks an account in the wallet while no wallet is connected.
package chainevents

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/pkg/logger"
	"github.com/popswap/popswap-interface/web3"
)

// Mode is what the listener is currently doing.
type Mode int

const (
	Idle Mode = iota
	Listening
)

func (m Mode) String() string {
	if m == Listening {
		return "listening"
	}

	return "idle"
}

// Inputs are the conditions the listener attaches on.
type Inputs struct {
	Active   bool
	Err      error
	Suppress bool
}

// Source is the injected wallet connector the listener subscribes to and reactivates.
type Source interface {
	connector.Connector
	connector.Detector
	connector.EventSource
}

// Config holds the dependencies of a Listener.
type Config struct {
	// Required: the user-wallet context.
	Manager *web3.Manager
	// Required: the injected wallet connector.
	Injected Source
	// Optional: start suppressed.
	Suppress bool
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

// Listener is Listening only while no wallet is connected, there is no connection error, it is not
// suppressed and the injected wallet exists. Every transition releases the current subscriptions
// before new ones are acquired.
type Listener struct {
	manager  *web3.Manager
	injected Source
	lggr     logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	inputs Inputs
	mode   Mode
	scope  *event.SubscriptionScope
	quit   chan struct{}
	closed bool
}

// New creates an idle Listener. It subscribes to nothing until Sync or Watch supplies inputs.
func New(cfg Config) *Listener {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Listener{
		manager:  cfg.Manager,
		injected: cfg.Injected,
		lggr:     cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		inputs:   Inputs{Suppress: cfg.Suppress},
	}
}

// Mode returns whether the listener is currently subscribed.
func (l *Listener) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.mode
}

// Sync applies new inputs.
func (l *Listener) Sync(in Inputs) {
	l.apply(func(cur *Inputs) { *cur = in })
}

// SetSuppress turns the listener off or back on, keeping the other inputs.
func (l *Listener) SetSuppress(suppress bool) {
	l.apply(func(cur *Inputs) { cur.Suppress = suppress })
}

// Watch feeds the manager state into the listener until ctx is done or the listener is closed.
func (l *Listener) Watch(ctx context.Context) {
	states := make(chan web3.State)
	sub := l.manager.SubscribeState(states)
	l.syncState(l.manager.State())

	go func() {
		defer sub.Unsubscribe()

		for {
			select {
			case s := <-states:
				l.syncState(s)
			case <-ctx.Done():
				return
			case <-l.ctx.Done():
				return
			case <-sub.Err():
				return
			}
		}
	}()
}

// Close releases the subscriptions and stops the listener for good.
func (l *Listener) Close() {
	l.mu.Lock()
	l.closed = true
	l.releaseLocked()
	l.mu.Unlock()

	l.cancel()
}

func (l *Listener) syncState(s web3.State) {
	l.apply(func(cur *Inputs) {
		cur.Active = s.Active
		cur.Err = s.Err
	})
}

func (l *Listener) apply(fn func(*Inputs)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.inputs
	fn(&l.inputs)
	if l.closed || (sameInputs(prev, l.inputs) && l.mode == l.target()) {
		return
	}

	l.releaseLocked()
	if l.target() == Listening {
		l.acquireLocked()
	}
}

func (l *Listener) target() Mode {
	in := l.inputs
	if in.Active || in.Err != nil || in.Suppress || !l.injected.Present() {
		return Idle
	}

	return Listening
}

func (l *Listener) acquireLocked() {
	scope := &event.SubscriptionScope{}
	chains := make(chan uint64)
	accounts := make(chan []common.Address)

	chainSub, err := l.injected.SubscribeChainChanged(chains)
	if err != nil {
		l.lggr.Warnw("Failed to subscribe to chain changes", "err", err)
		return
	}
	scope.Track(chainSub)
	accountsSub, err := l.injected.SubscribeAccountsChanged(accounts)
	if err != nil {
		scope.Close()
		l.lggr.Warnw("Failed to subscribe to account changes", "err", err)

		return
	}
	scope.Track(accountsSub)

	quit := make(chan struct{})
	l.scope, l.quit, l.mode = scope, quit, Listening
	l.lggr.Debugw("Listening for wallet changes")

	go l.handle(quit, chains, accounts, chainSub, accountsSub)
}

// releaseLocked drops both subscriptions. It does not wait for the handler, which may be inside an
// activation that is about to change the inputs.
func (l *Listener) releaseLocked() {
	if l.mode == Idle {
		return
	}
	close(l.quit)
	l.scope.Close()
	l.scope, l.quit, l.mode = nil, nil, Idle
	l.lggr.Debugw("Stopped listening for wallet changes")
}

func (l *Listener) handle(quit <-chan struct{}, chains <-chan uint64, accounts <-chan []common.Address,
	chainSub, accountsSub event.Subscription) {
	for {
		select {
		case <-quit:
			return
		case <-chainSub.Err():
			return
		case <-accountsSub.Err():
			return
		case <-chains:
			if stopped(quit) {
				return
			}
			if err := l.manager.TryActivate(l.ctx, l.injected); err != nil {
				l.lggr.Errorw("Failed to activate after chain changed", "err", err)
			}
		case list := <-accounts:
			if stopped(quit) {
				return
			}
			if len(list) == 0 {
				continue
			}
			if err := l.manager.TryActivate(l.ctx, l.injected); err != nil {
				l.lggr.Errorw("Failed to activate after accounts changed", "err", err)
			}
		}
	}
}

func sameInputs(a, b Inputs) bool {
	return a.Active == b.Active && a.Suppress == b.Suppress && (a.Err == nil) == (b.Err == nil)
}

func stopped(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}
