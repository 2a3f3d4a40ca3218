package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asltutor/apiserver/config"
	"github.com/asltutor/apiserver/internal/cache"
	"github.com/asltutor/apiserver/internal/handlers"
	"github.com/asltutor/apiserver/internal/logging"
	"github.com/asltutor/apiserver/internal/metrics"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	logger     *logging.Logger
	closers    []func(ctx context.Context) error
}

// Services bundles the use-cases the HTTP layer is built from.
type Services struct {
	Users       *services.UserService
	Submissions *services.SubmissionService
	Stats       *services.StatsService
	Export      *services.ExportService
}

// Dependencies opens every backing service named in cfg and builds the
// use-cases on top of them. The returned closers release the backends.
func Dependencies(ctx context.Context, cfg config.Config, logger *logging.Logger, m *metrics.Metrics) (Services, []func(context.Context) error, error) {
	var closers []func(context.Context) error
	fail := func(err error) (Services, []func(context.Context) error, error) {
		closeAll(context.Background(), closers)
		return Services{}, nil, err
	}

	repos, err := OpenRepositories(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, repos.Close)

	var statsCache services.TopRequestedCache
	if cfg.Cache.RedisURL != "" {
		rdb, err := cache.NewClient(cfg.Cache.RedisURL)
		if err != nil {
			return fail(err)
		}
		redisCache := cache.NewRedisCache(rdb, cfg.Cache.StatsTTL)
		closers = append(closers, func(context.Context) error { return redisCache.Close() })
		statsCache = redisCache
	}

	var objects services.ObjectWriter
	objectStorage, err := storage.Open(ctx, cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Info(ctx, "object storage not configured, stats export disabled")
	case err != nil:
		return fail(err)
	default:
		closers = append(closers, func(context.Context) error { return objectStorage.Close() })
		objects = objectStorage
	}

	stats := services.NewStatsService(repos.Dictionary, repos.Users, repos.Submissions, statsCache, m)
	return Services{
		Users:       services.NewUserService(repos.Users),
		Submissions: services.NewSubmissionService(repos.Submissions, repos.Users, m),
		Stats:       stats,
		Export:      services.NewExportService(stats, objects),
	}, closers, nil
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	m := metrics.New()
	svc, closers, err := Dependencies(ctx, cfg, logger, m)
	if err != nil {
		return nil, err
	}

	router := NewRouter(svc, cfg.JWTSecret, logger, m)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		logger:     logger,
		closers:    closers,
	}, nil
}

// NewRouter builds the HTTP routes over svc.
func NewRouter(svc Services, jwtSecret string, logger *logging.Logger, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware(logger),
		m.Middleware,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, svc.Users, jwtSecret)
	})
	router.Route("/admin", func(r chi.Router) {
		handlers.AdminRouter(r, svc.Stats, svc.Submissions, svc.Export,
			handlers.RequireAuth(jwtSecret),
			handlers.RequireAdmin(svc.Users),
		)
	})
	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	closeAll(ctx, s.closers)
	return err
}

func closeAll(ctx context.Context, closers []func(context.Context) error) {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i](ctx)
	}
}
