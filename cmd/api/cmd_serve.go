// AngelaMos | 2026
// cmd_serve.go

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/icetruck/internal/auth"
	"github.com/carterperez-dev/icetruck/internal/company"
	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/franchise"
	"github.com/carterperez-dev/icetruck/internal/health"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/metrics"
	"github.com/carterperez-dev/icetruck/internal/middleware"
	"github.com/carterperez-dev/icetruck/internal/order"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/server"
	"github.com/carterperez-dev/icetruck/internal/store"
	"github.com/carterperez-dev/icetruck/internal/truck"
	"github.com/carterperez-dev/icetruck/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(
		&migrateOnStart,
		"migrate",
		false,
		"apply pending migrations before serving",
	)
}

//nolint:funlen // bootstrap code is inherently verbose
func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootConfig()
	if err != nil {
		return err
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if cfg.Otel.Enabled {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if migrateOnStart {
		if _, err := core.Migrate(ctx, db.DB, logger); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		m.WatchPools(db.SQL(), redis)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		redis.Client,
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	companyHandler := company.NewHandler(company.NewService(db.DB, logger))
	franchiseHandler := franchise.NewHandler(franchise.NewService(db.DB, logger))

	kpis := kpi.NewCache(redis.Client, cfg.KPI.CacheTTL, m, logger)

	customerSvc := customer.NewService(customer.NewRepository(db.DB), kpis, logger)
	customerHandler := customer.NewHandler(customerSvc)

	truckRepo := truck.NewRepository(db.DB)
	truckHandler := truck.NewHandler(
		truck.NewService(truckRepo, customerSvc, kpis, logger),
	)

	storeHandler := store.NewHandler(
		store.NewService(store.NewRepository(db.DB), truckRepo, logger),
	)

	orderHandler := order.NewHandler(order.NewService(db.DB, kpis, m, logger))

	healthHandler := health.NewHandler(
		cfg.App.Version,
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	if m != nil {
		router.Use(m.Middleware)
	}
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			KeyFunc:  middleware.KeyByIP,
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if m != nil {
		router.Handle(cfg.Metrics.Path, m.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	writeLimiter := middleware.NewRateLimiter(
		redis.Client,
		middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.WriteRequests,
				cfg.RateLimit.WriteBurst,
			),
			KeyFunc:    middleware.KeyByUserAndEndpoint,
			BypassFunc: middleware.ReadOnly,
			FailOpen:   true,
		},
	)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		companyHandler.RegisterPublicRoutes(r)
		userHandler.RegisterRoutes(r, authenticator)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(scope.Middleware(scope.NewResolver(db.DB), logger))
			r.Use(writeLimiter.Handler)

			companyHandler.RegisterRoutes(r)
			franchiseHandler.RegisterRoutes(r)
			truckHandler.RegisterRoutes(r)
			customerHandler.RegisterRoutes(r)
			storeHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
