// Package di provides dependency injection configuration for the aligner server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/config"
	"github.com/listenupapp/aligner/internal/di/providers"
	"github.com/listenupapp/aligner/internal/logger"
	"github.com/listenupapp/aligner/internal/service"
	"github.com/listenupapp/aligner/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAligner)
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAlignmentService)

	// Workers
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	// Business services
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*aligner.Aligner](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AlignmentService](injector)

	// Workers
	if _, err := do.Invoke[*providers.InboxWatcherHandle](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
