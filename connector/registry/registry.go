// Package registry builds every wallet connector from configuration.
package registry

import (
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/popswap/popswap-interface/chain"
	"github.com/popswap/popswap-interface/connector"
	"github.com/popswap/popswap-interface/connector/injected"
	"github.com/popswap/popswap-interface/connector/network"
	"github.com/popswap/popswap-interface/connector/walletconnect"
	"github.com/popswap/popswap-interface/connector/walletlink"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// Options are the runtime dependencies of the registry that do not come from configuration.
type Options struct {
	// Optional: receives the WalletConnect pairing URI.
	URIHandler walletconnect.URIHandler
	// Optional: where the pairing QR code is written. QR output is disabled when nil.
	QRWriter io.Writer
	// Optional: overrides the injected provider built from configuration.
	InjectedProvider injected.Provider
}

// Registry holds one instance of each connector. It is built once by the application root and shared
// by reference.
type Registry struct {
	Injected      *injected.Connector
	Network       *network.Connector
	WalletConnect *walletconnect.Connector
	WalletLink    *walletlink.Connector

	provider injected.Provider
}

// New builds the connectors. No network I/O happens here; every connector dials on activation.
func New(cfg *config.Config, opts Options, lggr logger.Logger) (*Registry, error) {
	if cfg.NetworkURL == "" {
		return nil, config.ErrMissingNetworkURL
	}
	if lggr == nil {
		lggr = logger.Nop()
	}

	provider := opts.InjectedProvider
	if provider == nil && cfg.Injected.URL != "" {
		p, err := injected.NewRPCProvider(injected.RPCProviderConfig{
			URL:          cfg.Injected.URL,
			PollInterval: cfg.Injected.PollInterval,
			Logger:       lggr.Named("injected"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build injected provider: %w", err)
		}
		provider = p
	}

	networkConn, err := network.New(network.Config{
		URLs:           map[uint64]string{cfg.ChainID: cfg.NetworkURL},
		DefaultChainID: cfg.ChainID,
		Logger:         lggr.Named("network"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build network connector: %w", err)
	}

	wc, err := walletconnect.New(walletconnect.Config{
		RPCs:         map[uint64]string{chain.PopcateumMainnet: cfg.WalletConnect.RPCURL},
		Bridge:       cfg.WalletConnect.Bridge,
		QRCode:       cfg.WalletConnect.QRCode && opts.QRWriter != nil,
		QRWriter:     opts.QRWriter,
		PollInterval: cfg.WalletConnect.PollInterval,
		Meta: walletconnect.PeerMeta{
			Name:  cfg.WalletLink.AppName,
			Icons: lo.Compact([]string{cfg.WalletLink.AppLogoURL}),
		},
		URIHandler: opts.URIHandler,
		Logger:     lggr.Named("walletconnect"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build walletconnect connector: %w", err)
	}

	wl, err := walletlink.New(walletlink.Config{
		URL:               cfg.WalletLink.URL,
		AppName:           cfg.WalletLink.AppName,
		AppLogoURL:        cfg.WalletLink.AppLogoURL,
		SupportedChainIDs: []uint64{chain.PopcateumMainnet},
		Logger:            lggr.Named("walletlink"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build walletlink connector: %w", err)
	}

	return &Registry{
		Injected: injected.New(injected.Config{
			SupportedChainIDs: lo.Uniq(cfg.Injected.SupportedChainIDs),
			Provider:          provider,
			Logger:            lggr.Named("injected"),
		}),
		Network:       networkConn,
		WalletConnect: wc,
		WalletLink:    wl,
		provider:      provider,
	}, nil
}

// All returns the connectors in the order they are offered to the user.
func (r *Registry) All() []connector.Connector {
	return []connector.Connector{r.Injected, r.WalletConnect, r.WalletLink, r.Network}
}

// Wallets returns the connectors that connect a user wallet, leaving out the read-only network.
func (r *Registry) Wallets() []connector.Connector {
	return lo.Filter(r.All(), func(c connector.Connector, _ int) bool {
		return c.Kind() != connector.KindNetwork
	})
}

// ByName looks a connector up by its display name or kind.
func (r *Registry) ByName(name string) (connector.Connector, bool) {
	return lo.Find(r.All(), func(c connector.Connector) bool {
		return c.Name() == name || string(c.Kind()) == name
	})
}

// Close releases the resources held by the connectors.
func (r *Registry) Close() {
	r.WalletConnect.Close()
	r.Network.Deactivate()
	r.WalletLink.Deactivate()
	if r.provider != nil {
		r.provider.Close()
	}
}
