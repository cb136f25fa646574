// Package commands provides the CLI commands of the popswap binary.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(
//	    cmds.Connect(commands.ConnectConfig{}),
//	    cmds.Theme(),
//	    cmds.Currency(),
//	    cmds.Version(version),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/popswap/popswap-interface/pkg/commands/connect"
//
//	rootCmd.AddCommand(connect.NewCommand(connect.Config{
//	    Logger: lggr,
//	    Deps:   connect.Deps{...}, // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/popswap/popswap-interface/pkg/commands/connect"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Commands{lggr: lggr}
}

// ConnectConfig holds configuration for the connect command.
type ConnectConfig struct {
	// Deps overrides how the configuration is loaded and the application is built.
	Deps connect.Deps
}

// Connect creates the connect command, which brings up a wallet session.
func (c *Commands) Connect(cfg ConnectConfig) *cobra.Command {
	return connect.NewCommand(connect.Config{
		Logger: c.lggr.Named("connect"),
		Deps:   cfg.Deps,
	})
}
