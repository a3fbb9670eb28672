package cron

import (
	"context"
	"fmt"

	"github.com/storehubhq/storehub-backend/internal/subscriptions"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// sweeper runs one subscription sweep and reports what changed.
type sweeper interface {
	Run(ctx context.Context) (*subscriptions.Summary, error)
}

// SubscriptionSweepJobParams configure the sweep cron job.
type SubscriptionSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper sweeper
}

type subscriptionSweepJob struct {
	logg    *logger.Logger
	sweeper sweeper
}

// NewSubscriptionSweepJob wraps the subscription sweeper as a cron job.
func NewSubscriptionSweepJob(params SubscriptionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &subscriptionSweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

func (j *subscriptionSweepJob) Name() string { return "subscription_sweep" }

func (j *subscriptionSweepJob) Run(ctx context.Context) error {
	summary, err := j.sweeper.Run(ctx)
	if err != nil {
		return fmt.Errorf("subscription sweep: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"checked":      summary.Checked,
		"expired":      summary.Expired,
		"grace_period": summary.GracePeriod,
		"suspended":    summary.Suspended,
		"errors":       len(summary.Errors),
	})
	if len(summary.Errors) > 0 {
		j.logg.Warn(logCtx, "subscription sweep finished with errors")
		return nil
	}
	j.logg.Info(logCtx, "subscription sweep finished")
	return nil
}
