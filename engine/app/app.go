// Package app is the composition root of the interface. It builds the connectors from configuration
// and owns the two connection contexts, the auto-connect lifecycle and the chain-event listener.
package app

import (
	"context"
	"errors"
	"io"

	"github.com/popswap/popswap-interface/connector/injected"
	"github.com/popswap/popswap-interface/connector/registry"
	"github.com/popswap/popswap-interface/connector/walletconnect"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/internal/device"
	"github.com/popswap/popswap-interface/pkg/logger"
	"github.com/popswap/popswap-interface/web3"
	"github.com/popswap/popswap-interface/web3/autoconnect"
	"github.com/popswap/popswap-interface/web3/chainevents"
)

// Options contains the runtime options of an App.
type Options struct {
	registry registry.Options
	suppress bool
	mobile   *bool
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithURIHandler hands the WalletConnect pairing URI to fn.
func WithURIHandler(fn walletconnect.URIHandler) Option {
	return func(o *Options) {
		o.registry.URIHandler = fn
	}
}

// WithQRWriter writes the WalletConnect pairing QR code to w.
func WithQRWriter(w io.Writer) Option {
	return func(o *Options) {
		o.registry.QRWriter = w
	}
}

// WithInjectedProvider replaces the injected provider built from configuration.
func WithInjectedProvider(p injected.Provider) Option {
	return func(o *Options) {
		o.registry.InjectedProvider = p
	}
}

// WithSuppressedListener keeps the chain-event listener idle after the auto-connect attempt.
func WithSuppressedListener() Option {
	return func(o *Options) {
		o.suppress = true
	}
}

// WithMobile overrides the mobile detection done on the configured user agent.
func WithMobile(mobile bool) Option {
	return func(o *Options) {
		o.mobile = &mobile
	}
}

// App holds every long-lived instance. Nothing is global: callers reach the connectors and the
// contexts through the App.
type App struct {
	Config      *config.Config
	Registry    *registry.Registry
	User        *web3.Manager
	Network     *web3.Manager
	Resolver    *web3.Resolver
	AutoConnect *autoconnect.Lifecycle
	Listener    *chainevents.Listener

	suppress bool
	lggr     logger.Logger
}

// New builds the App. No network I/O happens here.
func New(cfg *config.Config, lggr logger.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if lggr == nil {
		lggr = logger.Nop()
	}

	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	reg, err := registry.New(cfg, options.registry, lggr.Named("registry"))
	if err != nil {
		return nil, err
	}

	mobile := device.IsMobile(cfg.UserAgent)
	if options.mobile != nil {
		mobile = *options.mobile
	}

	user := web3.NewManager("user", lggr.Named("web3"))
	network := web3.NewManager(web3.NetworkContextName, lggr.Named("web3"))

	return &App{
		Config:   cfg,
		Registry: reg,
		User:     user,
		Network:  network,
		Resolver: web3.NewResolver(user, network),
		AutoConnect: autoconnect.New(autoconnect.Config{
			Manager:  user,
			Injected: reg.Injected,
			Mobile:   mobile,
			Logger:   lggr.Named("autoconnect"),
		}),
		// the listener stays suppressed until the auto-connect attempt is over
		Listener: chainevents.New(chainevents.Config{
			Manager:  user,
			Injected: reg.Injected,
			Suppress: true,
			Logger:   lggr.Named("chainevents"),
		}),
		suppress: options.suppress,
		lggr:     lggr,
	}, nil
}

// Start runs the session start-up: the silent injected connection attempt, then the read-only
// network activation, then the chain-event listener. It returns the resolved connection state.
// Activation failures are logged and recorded in the contexts, never returned.
func (a *App) Start(ctx context.Context) web3.State {
	a.Listener.Watch(ctx)

	status := a.AutoConnect.Run(ctx)
	a.lggr.Debugw("Auto-connect finished", "status", status, "active", a.User.State().Active)

	if s := a.Network.State(); !s.Active && s.Err == nil {
		if err := a.Network.Activate(ctx, a.Registry.Network); err != nil {
			a.lggr.Errorw("Failed to activate network", "url", a.Config.NetworkURL, "err", err)
		}
	}

	a.Listener.SetSuppress(a.suppress)

	return a.Resolver.State()
}

// Close stops the listener, deactivates both contexts and releases the connectors.
func (a *App) Close() {
	a.Listener.Close()
	a.User.Deactivate()
	a.Network.Deactivate()
	a.Registry.Close()
}
