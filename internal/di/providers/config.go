// Package providers contains dependency injection providers for the aligner server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/aligner/internal/config"
	"github.com/listenupapp/aligner/internal/logger"
)

// ProvideConfig returns a provider that loads the configuration from args.
func ProvideConfig(args []string) do.Provider[*config.Config] {
	return func(i do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting aligner server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"session_ttl", cfg.Session.TTL,
		"watch_enabled", cfg.Watch.Enabled,
	)

	return log, nil
}
