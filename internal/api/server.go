// Package api provides the HTTP API server and handlers for the aligner service.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/aligner/internal/ratelimit"
	"github.com/listenupapp/aligner/internal/sse"
	"github.com/listenupapp/aligner/internal/store"
)

// DefaultMaxUploadBytes caps a single audio upload when no limit is configured.
const DefaultMaxUploadBytes int64 = 100 << 20

// Options holds the HTTP-level settings of the server.
type Options struct {
	Version        string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	services       *Services
	sseManager     *sse.Manager
	sseHandler     *sse.Handler
	limiter        *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	api            huma.API
	logger         *slog.Logger
	maxUploadBytes int64

	// Background runs started with async=true.
	runCtx     context.Context
	cancelRuns context.CancelFunc
	background sync.WaitGroup
}

// NewServer creates a new HTTP server with all routes configured.
// A nil limiter disables rate limiting.
func NewServer(
	st *store.Store,
	services *Services,
	sseManager *sse.Manager,
	sseHandler *sse.Handler,
	limiter *ratelimit.KeyedRateLimiter,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	router := chi.NewRouter()
	runCtx, cancelRuns := context.WithCancel(context.Background())

	s := &Server{
		store:          st,
		services:       services,
		sseManager:     sseManager,
		sseHandler:     sseHandler,
		limiter:        limiter,
		router:         router,
		logger:         logger,
		maxUploadBytes: opts.MaxUploadBytes,
		runCtx:         runCtx,
		cancelRuns:     cancelRuns,
	}

	s.setupMiddleware(opts.AllowedOrigins)

	humaConfig := huma.DefaultConfig("Aligner API", opts.Version)
	humaConfig.Info.Description = "Mock forced alignment: upload audio, add transcripts, download TextGrid and report files."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerSessionRoutes()
	s.registerEntryRoutes()
	s.registerAlignmentRoutes()

	// SSE is served by chi directly; huma cannot express an open-ended stream.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/sessions/{id}/events", s.sseHandler.ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close cancels background alignment runs and waits for them to record
// their outcome.
func (s *Server) Close(ctx context.Context) error {
	s.cancelRuns()

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// API returns the huma API, used for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(corsOptions(allowedOrigins)))
}

func corsOptions(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	// Credentials cannot be combined with a wildcard origin.
	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}
