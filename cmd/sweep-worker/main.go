package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/storehubhq/storehub-backend/internal/cron"
	"github.com/storehubhq/storehub-backend/internal/notifications"
	"github.com/storehubhq/storehub-backend/internal/subscriptions"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	"github.com/storehubhq/storehub-backend/pkg/config"
	"github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/instance"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	"github.com/storehubhq/storehub-backend/pkg/metrics"
	"github.com/storehubhq/storehub-backend/pkg/migrate"
	"github.com/storehubhq/storehub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sweep-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "sweep-worker"

	logg = logger.New(logger.Options{
		ServiceName: "sweep-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

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
	defer dispatcher.Close()

	sweeper, err := subscriptions.NewSweeper(subscriptions.SweeperParams{
		Logger:          logg,
		Repo:            tenants.NewRepository(dbClient.DB()),
		Notifier:        dispatcher,
		Metrics:         metrics.NewSweepMetrics(prometheus.DefaultRegisterer),
		GracePeriodDays: cfg.Subscription.GracePeriodDays,
		BatchSize:       cfg.Subscription.SweepBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription sweeper", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewSubscriptionSweepJob(cron.SubscriptionSweepJobParams{
		Logger:  logg,
		Sweeper: sweeper,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Subscription.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting sweep worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sweep worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sweep worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("sweep-worker:%s", env)
}
