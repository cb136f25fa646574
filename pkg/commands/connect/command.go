// Package connect provides the CLI command that brings up a wallet session.
package connect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/popswap/popswap-interface/chain"
	"github.com/popswap/popswap-interface/engine/app"
	"github.com/popswap/popswap-interface/pkg/commands/text"
	"github.com/popswap/popswap-interface/pkg/logger"
	"github.com/popswap/popswap-interface/web3"
)

const (
	DefaultConfigPath = "popswap.yml"
	DefaultTimeout    = 30 * time.Second
)

var (
	connectLong = text.LongDesc(`
		Runs the session start-up of the interface and prints the resolved connection.

		An injected wallet that already authorized the site is connected silently. The read-only
		network endpoint is activated in any case and is reported when no wallet is connected.
		With --wallet a specific connector is activated afterwards, which may prompt the user.
	`)

	connectExample = text.Examples(`
		# resolve the connection with the configuration in ./popswap.yml or the environment
		popswap connect

		# pair a mobile wallet through the WalletConnect bridge
		popswap connect --wallet walletconnect --timeout 2m
	`)
)

// Config holds the configuration for the connect command.
type Config struct {
	// Logger is the logger passed to the application root. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

type flags struct {
	configPath string
	timeout    time.Duration
	suppress   bool
	wallet     string
}

// NewCommand creates the connect command.
//
// Usage:
//
//	rootCmd.AddCommand(connect.NewCommand(connect.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	cfg.deps()
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	var f flags

	cmd := &cobra.Command{
		Use:     "connect",
		Short:   "Connect a wallet and print the active connection",
		Long:    connectLong,
		Example: connectExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConnect(cmd, cfg, f)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", DefaultConfigPath, "Config file, environment variables override its values")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", DefaultTimeout, "Deadline for the whole start-up")
	cmd.Flags().BoolVar(&f.suppress, "suppress", false, "Do not reconnect on wallet chain or account changes")
	cmd.Flags().StringVarP(&f.wallet, "wallet", "w", "", "Connector to activate: injected, walletconnect, walletlink or network")

	return cmd
}

func runConnect(cmd *cobra.Command, cfg Config, f flags) error {
	deps := cfg.deps()

	appCfg, err := deps.ConfigLoader(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err = appCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts := []app.Option{
		app.WithURIHandler(func(uri string) {
			cmd.Printf("Scan the QR code or open this URI in your wallet:\n%s\n", uri)
		}),
		app.WithQRWriter(cmd.OutOrStdout()),
	}
	if f.suppress {
		opts = append(opts, app.WithSuppressedListener())
	}

	a, err := deps.AppFactory(appCfg, cfg.Logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to build connectors: %w", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	state := a.Start(ctx)

	if f.wallet != "" {
		c, ok := a.Registry.ByName(f.wallet)
		if !ok {
			return fmt.Errorf("unknown wallet %q", f.wallet)
		}
		if err = a.User.Activate(ctx, c); err != nil {
			return fmt.Errorf("failed to connect %s: %w", c.Name(), err)
		}
		state = a.Resolver.State()
	}

	return printState(cmd, state)
}

func printState(cmd *cobra.Command, s web3.State) error {
	if !s.Active {
		if s.Err != nil {
			return fmt.Errorf("no active connection: %w", s.Err)
		}

		return errors.New("no active connection")
	}

	account := "none"
	if s.Account != nil {
		account = s.Account.Hex()
	}
	chainName := chain.Name(s.ChainID)
	if m, err := chain.Lookup(s.ChainID); err == nil {
		chainName = m.String()
	}

	cmd.Printf("Connector: %s\n", s.Connector.Name())
	cmd.Printf("Chain:     %s\n", chainName)
	cmd.Printf("Account:   %s\n", account)

	return nil
}
