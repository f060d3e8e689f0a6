package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tix/internal/app"
	"github.com/noah-isme/backend-tix/internal/catalog"
	"github.com/noah-isme/backend-tix/internal/config"
	"github.com/noah-isme/backend-tix/internal/jobs"
	"github.com/noah-isme/backend-tix/internal/lock"
	"github.com/noah-isme/backend-tix/internal/obs"
	"github.com/noah-isme/backend-tix/internal/pricing"
	"github.com/noah-isme/backend-tix/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel, "tix-worker").With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := app.NewPool(startCtx, cfg.DatabaseURL, "tix-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	redisClient, err := app.NewRedis(startCtx, cfg.RedisURL, false, func(err error) {
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

	formatter, err := pricing.NewFormatter(cfg.CurrencyCode, cfg.DisplayLocale)
	if err != nil {
		logger.Fatal().Err(err).Msg("currency formatter")
	}

	st := store.New(pool)
	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:     st,
		Cache:     catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Formatter: formatter,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	var metrics *obs.DomainMetrics
	if cfg.MetricsEnabled {
		metrics = obs.NewDomainMetrics(cfg.MetricsNamespace, nil)
	}

	handlers := &jobs.Handlers{
		Catalog: catalogService,
		Offers:  st,
		Locker:  lock.Locker{R: redisClient},
		Metrics: metrics,
		Logger:  logger,
	}
	mux := asynq.NewServeMux()
	handlers.Register(mux)

	srv := asynq.NewServer(taskOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Logger:      taskLogger{logger},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	})

	var scheduler *asynq.Scheduler
	if cfg.OfferExpirySweep != "" {
		scheduler = asynq.NewScheduler(taskOpt, &asynq.SchedulerOpts{Logger: taskLogger{logger}})
		if _, err := scheduler.Register(cfg.OfferExpirySweep, jobs.NewOffersExpireTask()); err != nil {
			logger.Fatal().Err(err).Str("spec", cfg.OfferExpirySweep).Msg("schedule offer expiry")
		}
		if err := scheduler.Start(); err != nil {
			logger.Fatal().Err(err).Msg("start scheduler")
		}
		logger.Info().Str("spec", cfg.OfferExpirySweep).Msg("offer expiry sweep scheduled")
	}

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start worker")
	}

	<-ctx.Done()
	if scheduler != nil {
		scheduler.Shutdown()
	}
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// taskLogger adapts zerolog to asynq.Logger.
type taskLogger struct {
	l zerolog.Logger
}

func (t taskLogger) Debug(args ...any) { t.l.Debug().Msg(fmt.Sprint(args...)) }
func (t taskLogger) Info(args ...any)  { t.l.Info().Msg(fmt.Sprint(args...)) }
func (t taskLogger) Warn(args ...any)  { t.l.Warn().Msg(fmt.Sprint(args...)) }
func (t taskLogger) Error(args ...any) { t.l.Error().Msg(fmt.Sprint(args...)) }
func (t taskLogger) Fatal(args ...any) { t.l.Fatal().Msg(fmt.Sprint(args...)) }
