package middleware

import (
	"context"

	"github.com/storehubhq/storehub-backend/internal/tenants"
)

type contextKey string

const (
	ctxTenantID contextKey = "tenant_id"
	ctxTenant   contextKey = "tenant_snapshot"
)

// TenantIDFromContext returns the resolved tenant id, empty when the request
// did not pass through the tenant middleware.
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTenantID).(string); ok {
		return v
	}
	return ""
}

// TenantFromContext returns the resolved tenant snapshot, nil when absent.
func TenantFromContext(ctx context.Context) *tenants.Snapshot {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTenant).(*tenants.Snapshot); ok {
		return v
	}
	return nil
}

// WithTenant injects the resolved tenant into the context for downstream
// handlers.
func WithTenant(ctx context.Context, snap *tenants.Snapshot) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if snap == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxTenantID, snap.Tenant.ID.String())
	return context.WithValue(ctx, ctxTenant, snap)
}
