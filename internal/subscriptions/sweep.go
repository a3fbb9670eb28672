package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storehubhq/storehub-backend/internal/notifications"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	"github.com/storehubhq/storehub-backend/pkg/metrics"
)

const defaultBatchSize = 500

// sweepRepository is the directory surface the sweeper needs.
type sweepRepository interface {
	ListSweepCandidates(ctx context.Context, limit, offset int) ([]models.Tenant, error)
	UpdateStatusConditional(ctx context.Context, id uuid.UUID, observed, target enums.TenantStatus) (bool, error)
}

// notifier hands lifecycle events to the async dispatcher.
type notifier interface {
	Notify(ctx context.Context, event notifications.Event)
}

// Summary reports one sweep run.
type Summary struct {
	// Checked counts every candidate evaluated.
	Checked int `json:"checked"`
	// Expired counts candidates whose expiry is in the past, whatever
	// state they ended up in.
	Expired int `json:"expired"`
	// GracePeriod counts transitions into the expired (grace) state.
	GracePeriod int `json:"gracePeriod"`
	// Suspended counts transitions into the suspended state.
	Suspended int `json:"suspended"`
	// Errors holds per-tenant failures; the sweep continues past them.
	Errors []string `json:"errors"`
	// SweptAt is when the run finished.
	SweptAt time.Time `json:"sweptAt"`
}

// SweeperParams configure the subscription sweeper.
type SweeperParams struct {
	Logger          *logger.Logger
	Repo            sweepRepository
	Notifier        notifier
	Metrics         *metrics.SweepMetrics
	GracePeriodDays int
	BatchSize       int
	Now             func() time.Time
}

// Sweeper walks every tenant with an expiry and applies the subscription
// state machine: past due within the grace period means expired, past the
// grace period means suspended. Transitions use conditional writes, so
// concurrent sweeps cannot double-apply or double-notify.
type Sweeper struct {
	logg      *logger.Logger
	repo      sweepRepository
	notifier  notifier
	metrics   *metrics.SweepMetrics
	graceDays int
	batchSize int
	now       func() time.Time
}

// NewSweeper validates dependencies and builds a Sweeper.
func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.GracePeriodDays < 0 {
		return nil, fmt.Errorf("grace period must not be negative")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Sweeper{
		logg:      params.Logger,
		repo:      params.Repo,
		notifier:  params.Notifier,
		metrics:   params.Metrics,
		graceDays: params.GracePeriodDays,
		batchSize: batch,
		now:       now,
	}, nil
}

// Run executes one sweep. Per-tenant failures land in the summary and the
// sweep moves on; only a failure to page through candidates aborts the run.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Errors: []string{}}
	now := s.now().UTC()

	offset := 0
	for {
		candidates, err := s.repo.ListSweepCandidates(ctx, s.batchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("listing sweep candidates: %w", err)
		}
		if len(candidates) == 0 {
			break
		}

		for i := range candidates {
			s.evaluate(ctx, &candidates[i], now, summary)
		}

		if len(candidates) < s.batchSize {
			break
		}
		offset += s.batchSize
	}

	summary.SweptAt = now
	if s.metrics != nil {
		s.metrics.AddChecked(summary.Checked)
		s.metrics.AddErrors(len(summary.Errors))
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"checked":      summary.Checked,
		"expired":      summary.Expired,
		"grace_period": summary.GracePeriod,
		"suspended":    summary.Suspended,
		"errors":       len(summary.Errors),
	})
	s.logg.Info(logCtx, "subscription sweep finished")
	return summary, nil
}

// evaluate applies the state machine to one tenant.
func (s *Sweeper) evaluate(ctx context.Context, tenant *models.Tenant, now time.Time, summary *Summary) {
	summary.Checked++

	if tenant.ExpireDate == nil || !tenant.ExpireDate.Before(now) {
		return
	}
	summary.Expired++

	daysExpired := int(now.Sub(*tenant.ExpireDate).Hours() / 24)
	target := enums.TenantStatusExpired
	if daysExpired > s.graceDays {
		target = enums.TenantStatusSuspended
	}
	if tenant.Status == target || tenant.Status == enums.TenantStatusSuspended {
		return
	}

	applied, err := s.repo.UpdateStatusConditional(ctx, tenant.ID, tenant.Status, target)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("tenant %s: %v", tenant.ID, err))
		return
	}
	if !applied {
		// Lost a race with a concurrent sweep or an admin action. The
		// winner owns the notification.
		logCtx := s.logg.WithTenantID(ctx, tenant.ID.String())
		s.logg.Debug(logCtx, "sweep transition skipped; status changed underneath")
		return
	}

	switch target {
	case enums.TenantStatusExpired:
		summary.GracePeriod++
	case enums.TenantStatusSuspended:
		summary.Suspended++
	}
	if s.metrics != nil {
		s.metrics.IncTransition(string(target))
	}

	eventType := enums.EventTenantExpired
	if target == enums.TenantStatusSuspended {
		eventType = enums.EventTenantSuspended
	}
	s.notifier.Notify(ctx, notifications.Event{
		Type:       eventType,
		TenantID:   tenant.ID,
		Subdomain:  tenant.Subdomain,
		Status:     target,
		OccurredAt: now,
	})
}
