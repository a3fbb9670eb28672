package subscriptions

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storehubhq/storehub-backend/internal/notifications"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

var sweepNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeSweepRepo struct {
	tenants  []*models.Tenant
	listErr  error
	writeErr error
	// staleStatus makes the listing report an out-of-date status for a
	// tenant, simulating a concurrent writer.
	staleStatus map[uuid.UUID]enums.TenantStatus
}

func (f *fakeSweepRepo) ListSweepCandidates(_ context.Context, limit, offset int) ([]models.Tenant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var eligible []models.Tenant
	for _, tenant := range f.tenants {
		if tenant.ExpireDate != nil && tenant.Status != enums.TenantStatusDeleted {
			snapshot := *tenant
			if stale, ok := f.staleStatus[tenant.ID]; ok {
				snapshot.Status = stale
			}
			eligible = append(eligible, snapshot)
		}
	}
	if offset >= len(eligible) {
		return nil, nil
	}
	end := offset + limit
	if end > len(eligible) {
		end = len(eligible)
	}
	return eligible[offset:end], nil
}

func (f *fakeSweepRepo) UpdateStatusConditional(_ context.Context, id uuid.UUID, observed, target enums.TenantStatus) (bool, error) {
	if f.writeErr != nil {
		return false, f.writeErr
	}
	for _, tenant := range f.tenants {
		if tenant.ID == id {
			if tenant.Status != observed {
				return false, nil
			}
			tenant.Status = target
			return true, nil
		}
	}
	return false, nil
}

type capturedEvents struct {
	events []notifications.Event
}

func (c *capturedEvents) Notify(_ context.Context, event notifications.Event) {
	c.events = append(c.events, event)
}

func expiredDaysAgo(days int) *time.Time {
	expire := sweepNow.AddDate(0, 0, -days)
	return &expire
}

func newTestSweeper(t *testing.T, repo *fakeSweepRepo, sink *capturedEvents) *Sweeper {
	t.Helper()
	sweeper, err := NewSweeper(SweeperParams{
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:            repo,
		Notifier:        sink,
		GracePeriodDays: 7,
		Now:             func() time.Time { return sweepNow },
	})
	require.NoError(t, err)
	return sweeper
}

func candidate(status enums.TenantStatus, expire *time.Time) *models.Tenant {
	return &models.Tenant{
		ID:         uuid.New(),
		Subdomain:  "store-" + uuid.NewString()[:8],
		Status:     status,
		ExpireDate: expire,
	}
}

func TestSweepMovesPastDueTenantIntoGrace(t *testing.T) {
	tenant := candidate(enums.TenantStatusActive, expiredDaysAgo(3))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{tenant}}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.Expired)
	assert.Equal(t, 1, summary.GracePeriod)
	assert.Equal(t, 0, summary.Suspended)
	assert.Equal(t, enums.TenantStatusExpired, tenant.Status)

	require.Len(t, sink.events, 1)
	assert.Equal(t, enums.EventTenantExpired, sink.events[0].Type)
}

func TestSweepSuspendsPastGracePeriod(t *testing.T) {
	tenant := candidate(enums.TenantStatusExpired, expiredDaysAgo(10))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{tenant}}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Suspended)
	assert.Equal(t, enums.TenantStatusSuspended, tenant.Status)
	require.Len(t, sink.events, 1)
	assert.Equal(t, enums.EventTenantSuspended, sink.events[0].Type)
}

func TestSweepJumpsStraightToSuspended(t *testing.T) {
	// An active tenant discovered 10 days past due never passes through a
	// persisted expired state and emits only the suspension event.
	tenant := candidate(enums.TenantStatusActive, expiredDaysAgo(10))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{tenant}}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.GracePeriod)
	assert.Equal(t, 1, summary.Suspended)
	assert.Equal(t, enums.TenantStatusSuspended, tenant.Status)
	require.Len(t, sink.events, 1)
	assert.Equal(t, enums.EventTenantSuspended, sink.events[0].Type)
}

func TestSweepGraceBoundary(t *testing.T) {
	onBoundary := candidate(enums.TenantStatusActive, expiredDaysAgo(7))
	pastBoundary := candidate(enums.TenantStatusActive, expiredDaysAgo(8))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{onBoundary, pastBoundary}}
	sink := &capturedEvents{}

	_, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, enums.TenantStatusExpired, onBoundary.Status)
	assert.Equal(t, enums.TenantStatusSuspended, pastBoundary.Status)
}

func TestSweepIgnoresFutureAndMissingExpiry(t *testing.T) {
	future := sweepNow.AddDate(0, 1, 0)
	healthy := candidate(enums.TenantStatusActive, &future)
	openEnded := candidate(enums.TenantStatusActive, nil)
	repo := &fakeSweepRepo{tenants: []*models.Tenant{healthy, openEnded}}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	// Tenants without an expiry are not even candidates.
	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 0, summary.Expired)
	assert.Equal(t, enums.TenantStatusActive, healthy.Status)
	assert.Equal(t, enums.TenantStatusActive, openEnded.Status)
	assert.Empty(t, sink.events)
}

func TestSweepSecondRunIsIdempotent(t *testing.T) {
	inGrace := candidate(enums.TenantStatusActive, expiredDaysAgo(3))
	pastGrace := candidate(enums.TenantStatusActive, expiredDaysAgo(10))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{inGrace, pastGrace}}
	sink := &capturedEvents{}
	sweeper := newTestSweeper(t, repo, sink)

	_, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.events, 2)

	second, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, second.Checked)
	assert.Equal(t, 2, second.Expired)
	assert.Equal(t, 0, second.GracePeriod)
	assert.Equal(t, 0, second.Suspended)
	assert.Len(t, sink.events, 2)
}

func TestSweepLeavesSuspendedAlone(t *testing.T) {
	// A manual suspension holds even while the expiry is still inside the
	// grace period.
	tenant := candidate(enums.TenantStatusSuspended, expiredDaysAgo(2))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{tenant}}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, enums.TenantStatusSuspended, tenant.Status)
	assert.Equal(t, 0, summary.GracePeriod)
	assert.Empty(t, sink.events)
}

func TestSweepLostRaceSkipsNotification(t *testing.T) {
	// The listing observes active, but another writer has already moved the
	// tenant on before the conditional write lands.
	tenant := candidate(enums.TenantStatusExpired, expiredDaysAgo(3))
	repo := &fakeSweepRepo{
		tenants:     []*models.Tenant{tenant},
		staleStatus: map[uuid.UUID]enums.TenantStatus{tenant.ID: enums.TenantStatusActive},
	}
	sink := &capturedEvents{}
	sweeper := newTestSweeper(t, repo, sink)

	summary, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.GracePeriod)
	assert.Empty(t, sink.events)
}

func TestSweepRecordsPerTenantErrors(t *testing.T) {
	first := candidate(enums.TenantStatusActive, expiredDaysAgo(3))
	second := candidate(enums.TenantStatusActive, expiredDaysAgo(4))
	repo := &fakeSweepRepo{tenants: []*models.Tenant{first, second}, writeErr: assert.AnError}
	sink := &capturedEvents{}

	summary, err := newTestSweeper(t, repo, sink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked)
	assert.Len(t, summary.Errors, 2)
	assert.Empty(t, sink.events)
}

func TestSweepPagesThroughCandidates(t *testing.T) {
	var tenants []*models.Tenant
	for i := 0; i < 5; i++ {
		tenants = append(tenants, candidate(enums.TenantStatusActive, expiredDaysAgo(3)))
	}
	repo := &fakeSweepRepo{tenants: tenants}
	sink := &capturedEvents{}

	sweeper, err := NewSweeper(SweeperParams{
		Logger:          logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repo:            repo,
		Notifier:        sink,
		GracePeriodDays: 7,
		BatchSize:       2,
		Now:             func() time.Time { return sweepNow },
	})
	require.NoError(t, err)

	summary, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Checked)
	assert.Equal(t, 5, summary.GracePeriod)
	assert.Len(t, sink.events, 5)
}

func TestSweepListFailureAborts(t *testing.T) {
	repo := &fakeSweepRepo{listErr: assert.AnError}
	sink := &capturedEvents{}

	_, err := newTestSweeper(t, repo, sink).Run(context.Background())
	assert.Error(t, err)
}
