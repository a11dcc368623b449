package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/aligner/internal/aligner"
	"github.com/listenupapp/aligner/internal/config"
	"github.com/listenupapp/aligner/internal/logger"
	"github.com/listenupapp/aligner/internal/ratelimit"
	"github.com/listenupapp/aligner/internal/service"
	"github.com/listenupapp/aligner/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAligner provides the mock aligner, seeded when a seed is configured.
func ProvideAligner(i do.Injector) (*aligner.Aligner, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Aligner.Seeded {
		log.Info("Aligner initialized", "seed", cfg.Aligner.Seed, "delay", cfg.Aligner.Delay)
		return aligner.NewSeeded(cfg.Aligner.Seed), nil
	}

	log.Info("Aligner initialized", "seed", "random", "delay", cfg.Aligner.Delay)
	return aligner.NewRandom(), nil
}

// RateLimiterHandle wraps the per-client limiter. Limiter is nil when
// rate limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-IP limiter for uploads and runs.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.RateLimit.RequestsPerMinute <= 0 {
		log.Info("Rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	log.Info("Rate limiting enabled",
		"requests_per_minute", cfg.RateLimit.RequestsPerMinute,
		"burst", cfg.RateLimit.Burst,
	)
	return &RateLimiterHandle{
		Limiter: ratelimit.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst),
	}, nil
}

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideAlignmentService provides the alignment service.
func ProvideAlignmentService(i do.Injector) (*service.AlignmentService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	a := do.MustInvoke[*aligner.Aligner](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAlignmentService(storeHandle.Store, a, sseHandle.Manager, log.Logger, cfg.Aligner.Delay), nil
}
