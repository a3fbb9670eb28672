package controllers

import (
	"net/http"
	"time"

	"github.com/storehubhq/storehub-backend/api/middleware"
	"github.com/storehubhq/storehub-backend/api/responses"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
)

type storefrontContextResponse struct {
	TenantID   string     `json:"tenantId"`
	Name       string     `json:"name"`
	Subdomain  string     `json:"subdomain"`
	Status     string     `json:"status"`
	ExpireDate *time.Time `json:"expireDate,omitempty"`
	CachedAt   time.Time  `json:"cachedAt"`
}

// StorefrontContext echoes the tenant the request resolved to. The
// storefront shell calls it on boot to learn who it is serving.
func StorefrontContext(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		snap := middleware.TenantFromContext(ctx)
		if snap == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant missing from request context"))
			return
		}

		responses.WriteSuccess(w, storefrontContextResponse{
			TenantID:   snap.Tenant.ID.String(),
			Name:       snap.Tenant.Name,
			Subdomain:  snap.Tenant.Subdomain,
			Status:     snap.Tenant.Status.String(),
			ExpireDate: snap.Tenant.ExpireDate,
			CachedAt:   snap.CachedAt,
		})
	}
}
