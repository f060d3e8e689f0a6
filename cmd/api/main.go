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
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-tix/internal/app"
	"github.com/noah-isme/backend-tix/internal/auth"
	"github.com/noah-isme/backend-tix/internal/catalog"
	"github.com/noah-isme/backend-tix/internal/checkout"
	"github.com/noah-isme/backend-tix/internal/common"
	"github.com/noah-isme/backend-tix/internal/config"
	"github.com/noah-isme/backend-tix/internal/events"
	"github.com/noah-isme/backend-tix/internal/health"
	"github.com/noah-isme/backend-tix/internal/jobs"
	"github.com/noah-isme/backend-tix/internal/listing"
	"github.com/noah-isme/backend-tix/internal/lock"
	"github.com/noah-isme/backend-tix/internal/obs"
	"github.com/noah-isme/backend-tix/internal/pricing"
	"github.com/noah-isme/backend-tix/internal/ratelimit"
	"github.com/noah-isme/backend-tix/internal/security"
	"github.com/noah-isme/backend-tix/internal/selection"
	"github.com/noah-isme/backend-tix/internal/store"
)

const maxAdminBody = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel, "tix-api").With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "tix-api",
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if cfg.MigrateOnStart {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("migrations applied")
	}

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := app.NewPool(startCtx, cfg.DatabaseURL, "tix-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	redisClient, err := app.NewRedis(startCtx, cfg.RedisURL, cfg.MetricsEnabled, func(err error) {
		logger.Error().Err(err).Msg("redis instrumentation")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	taskOpt, err := app.TaskRedisOpt(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("task queue")
	}
	taskClient := asynq.NewClient(taskOpt)
	defer func() { _ = taskClient.Close() }()

	formatter, err := pricing.NewFormatter(cfg.CurrencyCode, cfg.DisplayLocale)
	if err != nil {
		logger.Fatal().Err(err).Msg("currency formatter")
	}
	mode, err := checkout.ParseMode(cfg.CheckoutMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("checkout mode")
	}

	var httpMetrics *obs.HTTPMetrics
	var domainMetrics *obs.DomainMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
		domainMetrics = obs.NewDomainMetrics(cfg.MetricsNamespace, nil)
	}

	st := store.New(pool)
	bus := &events.Bus{
		Store:     st,
		Notifiers: []events.Notifier{jobs.CatalogNotifier{Client: taskClient}},
	}

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:     st,
		Cache:     catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Formatter: formatter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})

	selectionService := &selection.Service{
		Events:    catalogService,
		Sessions:  selection.NewStore(redisClient, cfg.SelectionTTL),
		Formatter: formatter,
		Metrics:   domainMetrics,
	}
	selectionHandler := selection.NewHandler(selectionService)

	checkoutHandler := &checkout.Handler{Svc: &checkout.Service{
		Sessions:    selectionService,
		Builder:     checkout.Builder{Mode: mode, PayPath: cfg.CheckoutPayPath},
		Guard:       lock.Locker{R: redisClient},
		GuardTTL:    cfg.CheckoutGuardTTL,
		SubmitDelay: cfg.CheckoutSubmitDelay,
		Metrics:     domainMetrics,
		Logger:      logger.With().Str("component", "checkout").Logger(),
	}}

	listingHandler := &listing.Handler{
		Svc: &listing.Service{
			Store:                 st,
			Validator:             listing.NewValidator(),
			Events:                bus,
			DefaultDeliveryMethod: cfg.DefaultDeliveryMethod,
			Metrics:               domainMetrics,
			Logger:                logger.With().Str("component", "listing").Logger(),
		},
		Catalog: catalogService,
		MaxBody: maxAdminBody,
	}

	verifier, err := auth.NewVerifier(cfg.AdminJWTSecret, cfg.AdminJWTIssuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise admin auth")
	}
	adminAuth := auth.Middleware{Verifier: verifier}

	limiterStore, err := app.NewLimiterStore(redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("rate limiter store")
	}
	publicLimiter, err := ratelimit.New(limiterStore, cfg.RateLimitPublic)
	if err != nil {
		logger.Fatal().Err(err).Msg("rate limit")
	}
	throttle := ratelimit.Handler{
		Limiter: publicLimiter,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	healthHandler := health.Handler{Probes: []health.Probe{
		{Name: "db", Timeout: 500 * time.Millisecond, Check: st.Ping},
		{Name: "redis", Timeout: 300 * time.Millisecond, Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{
		EnableHSTS:      cfg.AppEnv == "production",
		NoStorePrefixes: []string{"/api/v1/selections/", "/api/v1/events/", "/api/v1/admin/"},
	}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Idempotent-Replayed"},
		MaxAge:         300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: maxAdminBody}.Middleware)
		v.Group(func(pub chi.Router) {
			pub.Use(throttle.Middleware)
			pub.Get("/events", catalogHandler.Events)
			pub.Get("/events/{slug}", catalogHandler.EventDetail)
			pub.Get("/events/{slug}/offers", selectionHandler.Board)
			pub.Route("/selections/{session}/offers/{offerID}", func(s chi.Router) {
				s.Post("/variants/{variantID}/toggle", selectionHandler.Toggle)
				s.Post("/checkout", checkoutHandler.Checkout)
			})
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(adminAuth.RequireAdmin)
			admin.Get("/events", listingHandler.Index)
			admin.With(idem.Middleware).Post("/events", listingHandler.Create)
			admin.Delete("/events/{id}", listingHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, "tix-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("checkout_mode", string(mode)).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	shutdown(srv, logger)
}

func shutdown(srv *http.Server, logger zerolog.Logger) {
	health.SetReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
		return
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
