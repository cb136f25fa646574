// Package autoconnect performs the one-shot silent reconnect of the injected wallet at startup.
//
// The lifecycle moves Untried -> Checking -> Tried exactly once. Callers render the manual connect
// prompt only after Done is closed, so a returning user never sees it flash before the silent
// reconnect resolves.
package autoconnect

import (
	"context"
	"sync"

	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/pkg/logger"
	"github.com/popswap/popswap-interface/web3"
)

// Status is the stage of the silent reconnect attempt.
type Status int

const (
	Untried Status = iota
	Checking
	Tried
)

func (s Status) String() string {
	switch s {
	case Untried:
		return "untried"
	case Checking:
		return "checking"
	case Tried:
		return "tried"
	default:
		return "unknown"
	}
}

// Injected is the connector the lifecycle reconnects.
type Injected interface {
	connector.Connector
	connector.Authorizer
	connector.Detector
}

// Config holds the dependencies of a Lifecycle.
type Config struct {
	// Required: the user-wallet context.
	Manager *web3.Manager
	// Required: the injected wallet connector.
	Injected Injected
	// Mobile marks an in-wallet mobile browser. Such wallets expose a provider without reporting a
	// prior authorization, so activation is attempted anyway when a provider is present.
	Mobile bool
	// Optional: Logger, defaults to a no-op logger.
	Logger logger.Logger
}

// Lifecycle gates the initial silent connection attempt.
type Lifecycle struct {
	manager  *web3.Manager
	injected Injected
	mobile   bool
	lggr     logger.Logger

	mu     sync.Mutex
	status Status
	done   chan struct{}
}

// New creates a Lifecycle in the Untried state. It does not contact the wallet.
func New(cfg Config) *Lifecycle {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	return &Lifecycle{
		manager:  cfg.Manager,
		injected: cfg.Injected,
		mobile:   cfg.Mobile,
		lggr:     cfg.Logger,
		done:     make(chan struct{}),
	}
}

// Status returns the current stage of the lifecycle.
func (l *Lifecycle) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.status
}

// Tried reports whether the silent attempt is over.
func (l *Lifecycle) Tried() bool { return l.Status() == Tried }

// Done is closed once the lifecycle reaches Tried.
func (l *Lifecycle) Done() <-chan struct{} { return l.done }

// Run performs the silent attempt and returns the resulting status. Only the first call does any
// work. Failures are logged and never returned. If the user-wallet context becomes active at any
// point, the lifecycle moves to Tried immediately.
func (l *Lifecycle) Run(ctx context.Context) Status {
	l.mu.Lock()
	if l.status != Untried {
		defer l.mu.Unlock()
		return l.status
	}
	l.status = Checking
	l.mu.Unlock()

	l.watchActive()

	authorized, err := l.injected.IsAuthorized(ctx)
	switch {
	case err != nil:
		l.lggr.Errorw("Failed to check authorization", "err", err)
	case authorized:
		l.attempt(ctx, "Failed to activate due to authorization")
	case l.mobile && l.injected.Present():
		l.attempt(ctx, "Failed to activate on mobile with injected provider")
	}
	l.markTried()

	return l.Status()
}

// attempt activates the injected connector once, unless the lifecycle already finished while the
// authorization check was in flight.
func (l *Lifecycle) attempt(ctx context.Context, failure string) {
	if l.Tried() {
		l.lggr.Debugw("Skipping silent activation, wallet already connected")
		return
	}
	if err := l.manager.TryActivate(ctx, l.injected); err != nil {
		l.lggr.Errorw(failure, "err", err)
	}
}

// watchActive moves the lifecycle to Tried as soon as the user-wallet context is active.
func (l *Lifecycle) watchActive() {
	states := make(chan web3.State)
	sub := l.manager.SubscribeState(states)
	if l.manager.State().Active {
		sub.Unsubscribe()
		l.markTried()

		return
	}

	go func() {
		defer sub.Unsubscribe()

		for {
			select {
			case s := <-states:
				if s.Active {
					l.markTried()
					return
				}
			case <-l.done:
				return
			case <-sub.Err():
				return
			}
		}
	}()
}

func (l *Lifecycle) markTried() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status == Tried {
		return
	}
	l.status = Tried
	close(l.done)
	l.lggr.Debugw("Silent connection attempt finished")
}
