package connect

import (
	"github.com/popswap/popswap-interface/engine/app"
	"github.com/popswap/popswap-interface/engine/config"
	"github.com/popswap/popswap-interface/pkg/logger"
)

// ConfigLoaderFunc loads the interface configuration from a file path, falling back to the
// environment.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// AppFactoryFunc builds the application root from a loaded configuration.
type AppFactoryFunc func(cfg *config.Config, lggr logger.Logger, opts ...app.Option) (*app.App, error)

// Deps holds the injectable dependencies of the connect command.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the configuration.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// AppFactory builds the application root.
	// Default: app.New
	AppFactory AppFactoryFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.AppFactory == nil {
		d.AppFactory = app.New
	}
}
