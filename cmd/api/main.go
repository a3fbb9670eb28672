package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/storehubhq/storehub-backend/api/routes"
	"github.com/storehubhq/storehub-backend/internal/isolation"
	"github.com/storehubhq/storehub-backend/internal/notifications"
	"github.com/storehubhq/storehub-backend/internal/plans"
	"github.com/storehubhq/storehub-backend/internal/subscriptions"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	"github.com/storehubhq/storehub-backend/pkg/config"
	"github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/env"
	"github.com/storehubhq/storehub-backend/pkg/instance"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	"github.com/storehubhq/storehub-backend/pkg/metrics"
	"github.com/storehubhq/storehub-backend/pkg/migrate"
	"github.com/storehubhq/storehub-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var publisher notifications.Publisher
	if cfg.Notifications.Topic != "" && cfg.GCP.ProjectID != "" {
		pub, err := notifications.NewPubSubPublisher(context.Background(), cfg.GCP.ProjectID, cfg.Notifications.Topic)
		if err != nil {
			logg.Error(context.Background(), "failed to create pubsub publisher", err)
			os.Exit(1)
		}
		publisher = pub
	} else {
		publisher = notifications.LogPublisher{Logger: logg}
	}

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Logger:    logg,
		Publisher: publisher,
		QueueSize: cfg.Notifications.QueueSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	tenantRepo := tenants.NewRepository(dbClient.DB())

	var cache tenants.Cache
	if cfg.Tenancy.UsesRedisCache() {
		cache = tenants.NewRedisCache(redisClient, cfg.Tenancy.CacheTTL, logg)
	} else {
		cache = tenants.NewMemoryCache(cfg.Tenancy.CacheTTL)
	}

	resolver, err := tenants.NewResolver(tenants.ResolverParams{
		Logger:    logg,
		Parser:    tenants.NewParser(cfg.Tenancy),
		Cache:     cache,
		Directory: tenantRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant resolver", err)
		os.Exit(1)
	}

	isolationManager, err := isolation.NewManager(isolation.ManagerParams{
		Logger: logg,
		DB:     dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create isolation manager", err)
		os.Exit(1)
	}

	planService, err := plans.NewService(plans.ServiceParams{
		Logger: logg,
		Repo:   plans.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}

	tenantService, err := tenants.NewService(tenants.ServiceParams{
		Logger:     logg,
		Repo:       tenantRepo,
		Plans:      planService,
		Audit:      isolationManager,
		Cache:      cache,
		Notifier:   dispatcher,
		BaseDomain: cfg.Tenancy.BaseDomain,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tenant service", err)
		os.Exit(1)
	}

	sweeper, err := subscriptions.NewSweeper(subscriptions.SweeperParams{
		Logger:          logg,
		Repo:            tenantRepo,
		Notifier:        dispatcher,
		Metrics:         metrics.NewSweepMetrics(prometheus.DefaultRegisterer),
		GracePeriodDays: cfg.Subscription.GracePeriodDays,
		BatchSize:       cfg.Subscription.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription sweeper", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, redisClient, resolver, tenantService, planService, sweeper),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	dispatcher.Close()
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
