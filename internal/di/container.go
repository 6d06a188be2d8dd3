// Package di provides dependency injection configuration for the FocusFlow server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/focusflowapp/focusflow-server/internal/config"
	"github.com/focusflowapp/focusflow-server/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Analysis layer
	do.Provide(injector, providers.ProvideAnalyzer)
	do.Provide(injector, providers.ProvideAnalyzeLimiter)

	// Business services
	do.Provide(injector, providers.ProvideFocusService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap invokes the service graph so every provider runs at startup
// instead of on first use. The HTTP server sits at the root and pulls
// in everything else.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
