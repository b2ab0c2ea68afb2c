package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-vendas/internal/analytics"
	"github.com/noah-isme/backend-vendas/internal/catalog"
	"github.com/noah-isme/backend-vendas/internal/config"
	"github.com/noah-isme/backend-vendas/internal/customer"
	"github.com/noah-isme/backend-vendas/internal/finance"
	"github.com/noah-isme/backend-vendas/internal/health"
	"github.com/noah-isme/backend-vendas/internal/obs"
	"github.com/noah-isme/backend-vendas/internal/sales"
	"github.com/noah-isme/backend-vendas/internal/seller"
	"github.com/noah-isme/backend-vendas/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "vendas-api"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	validate := validator.New()

	catalogSvc := &catalog.Service{
		Pool:  pool,
		Cache: catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	}
	catalogHandler := &catalog.Handler{Svc: catalogSvc, Validate: validate}

	customerSvc := &customer.Service{Pool: pool}
	customerHandler := &customer.Handler{
		Svc:          customerSvc,
		Validate:     validate,
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	}

	sellerSvc := &seller.Service{Pool: pool}
	sellerHandler := &seller.Handler{
		Svc:          sellerSvc,
		Validate:     validate,
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	}

	settingsSvc := &settings.Service{Pool: pool, R: redisClient, TTL: cfg.SettingsCacheTTL}
	settingsHandler := &settings.Handler{Svc: settingsSvc}

	salesSvc := &sales.Service{
		Pool:      pool,
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Sellers:   sellerSvc,
		Settings:  settingsSvc,
		Log:       logger,
	}
	salesHandler := &sales.Handler{
		Svc:          salesSvc,
		Validate:     validate,
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	}

	financeSvc := &finance.Service{Pool: pool}
	financeHandler := &finance.Handler{
		Svc:          financeSvc,
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	}

	analyticsSvc := &analytics.Service{
		Pool:      pool,
		R:         redisClient,
		TTL:       cfg.AnalyticsCacheTTL,
		RangeDays: cfg.AnalyticsRangeDays,
	}
	analyticsHandler := &analytics.Handler{Svc: analyticsSvc}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Probes: map[string]health.Pinger{
			"db":    health.PoolPinger(pool),
			"redis": health.RedisPinger(redisClient),
		},
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/products", func(p chi.Router) {
			p.Get("/", catalogHandler.List)
			p.Post("/", catalogHandler.Create)
			p.Get("/{productID}", catalogHandler.Get)
			p.Put("/{productID}", catalogHandler.Update)
		})

		v.Route("/customers", func(c chi.Router) {
			c.Get("/", customerHandler.List)
			c.Post("/", customerHandler.Create)
			c.Get("/{customerID}", customerHandler.Get)
		})

		v.Route("/sellers", func(s chi.Router) {
			s.Get("/", sellerHandler.List)
			s.Post("/", sellerHandler.Create)
			s.Get("/{sellerID}", sellerHandler.Get)
		})

		v.Route("/settings", func(s chi.Router) {
			s.Get("/", settingsHandler.Get)
			s.Put("/", settingsHandler.Update)
		})

		v.Route("/sales", func(s chi.Router) {
			s.Get("/", salesHandler.List)
			s.Post("/", salesHandler.Create)
			s.Post("/preview", salesHandler.Preview)
			s.Get("/{saleID}", salesHandler.Get)
			s.Put("/{saleID}", salesHandler.Update)
			s.Patch("/{saleID}/status", salesHandler.UpdateStatus)
		})

		v.Route("/receivables", func(f chi.Router) {
			f.Get("/", financeHandler.List)
			f.Get("/summary", financeHandler.Summary)
			f.Post("/{receivableID}/pay", financeHandler.MarkPaid)
		})

		v.Route("/analytics", func(an chi.Router) {
			an.Get("/sales-daily", analyticsHandler.SalesDaily)
			an.Get("/dashboard", analyticsHandler.Dashboard)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
