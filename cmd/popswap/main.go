package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/pkg/commands"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.0.0-dev"

func main() {
	lggr, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(lggr).ExecuteContext(ctx); err != nil {
		stop()
		lggr.Fatalw("popswap failed", "err", err)
	}
}

// newLogger builds the process logger at the level configured through LOG_LEVEL.
func newLogger() (logger.Logger, error) {
	cfg, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	lcfg, err := logger.ConfigFromLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return lcfg.New()
}

func newRootCmd(lggr logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "popswap",
		Short:         "PopSwap interface tooling",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmds := commands.New(lggr)
	root.AddCommand(
		cmds.Connect(commands.ConnectConfig{}),
		cmds.Theme(),
		cmds.Currency(),
		cmds.Version(version),
	)

	return root
}
