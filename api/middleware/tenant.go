package middleware

import (
	"context"
	"net/http"

	"github.com/storehubhq/storehub-backend/api/responses"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

// hostResolver maps a Host header to a tenant snapshot.
type hostResolver interface {
	Resolve(ctx context.Context, rawHost string) (*tenants.Snapshot, error)
}

// Tenant resolves the request host to exactly one tenant before any business
// logic runs. Unknown hosts get 404, suspended or deleted stores 403, and a
// broken directory 503; an expired store still inside its grace period passes
// through.
func Tenant(resolver hostResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			snap, err := resolver.Resolve(ctx, r.Host)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if snap.Tenant.Status.Blocked() {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSuspended, "store is suspended"))
				return
			}

			ctx = WithTenant(ctx, snap)
			if logg != nil {
				ctx = logg.WithTenantID(ctx, snap.Tenant.ID.String())
				ctx = logg.WithHostname(ctx, r.Host)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
