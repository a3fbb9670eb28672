package tenants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Tenant: models.Tenant{
			ID:        uuid.New(),
			Subdomain: "acme",
			Status:    enums.TenantStatusActive,
		},
		CachedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache(5 * time.Minute)
	ctx := context.Background()
	snap := testSnapshot()

	_, ok := cache.TryGet(ctx, "acme.storehub.app")
	assert.False(t, ok)

	cache.Set(ctx, "acme.storehub.app", snap)
	got, ok := cache.TryGet(ctx, "acme.storehub.app")
	require.True(t, ok)
	assert.Equal(t, snap.Tenant.ID, got.Tenant.ID)

	cache.Invalidate(ctx, "acme.storehub.app")
	_, ok = cache.TryGet(ctx, "acme.storehub.app")
	assert.False(t, ok)
}

func TestMemoryCacheExpiresEntries(t *testing.T) {
	cache := NewMemoryCache(5 * time.Minute)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }
	ctx := context.Background()

	cache.Set(ctx, "acme.storehub.app", testSnapshot())

	clock = clock.Add(4 * time.Minute)
	_, ok := cache.TryGet(ctx, "acme.storehub.app")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, ok = cache.TryGet(ctx, "acme.storehub.app")
	assert.False(t, ok)
}

func TestMemoryCacheIgnoresNilSnapshot(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "acme.storehub.app", nil)
	_, ok := cache.TryGet(ctx, "acme.storehub.app")
	assert.False(t, ok)
}

func TestMemoryCacheCopiesOnRead(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "acme.storehub.app", testSnapshot())
	first, ok := cache.TryGet(ctx, "acme.storehub.app")
	require.True(t, ok)
	first.Tenant.Subdomain = "mutated"

	second, ok := cache.TryGet(ctx, "acme.storehub.app")
	require.True(t, ok)
	assert.Equal(t, "acme", second.Tenant.Subdomain)
}
