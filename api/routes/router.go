package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storehubhq/storehub-backend/api/controllers"
	"github.com/storehubhq/storehub-backend/api/middleware"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	"github.com/storehubhq/storehub-backend/pkg/config"
	"github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	"github.com/storehubhq/storehub-backend/pkg/redis"
)

// tenantResolver maps an incoming Host header to a tenant snapshot.
type tenantResolver interface {
	Resolve(ctx context.Context, rawHost string) (*tenants.Snapshot, error)
}

// rateLimiterStore is the counter backend for write-endpoint throttling.
type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP redis.Pinger,
	limiter rateLimiterStore,
	resolver tenantResolver,
	tenantService controllers.TenantService,
	planService controllers.PlanService,
	sweeper controllers.SweepRunner,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Tenancy.BaseDomain),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.RateLimit.RegisterWindow,
		cfg.RateLimit.RegisterIPLimit,
		cfg.RateLimit.RegisterSubdomainLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/plans", controllers.ListPlans(planService, logg))

		r.Route("/tenants", func(r chi.Router) {
			r.With(middleware.RateLimit(registerPolicy, limiter, logg)).
				Post("/", controllers.RegisterTenant(tenantService, logg))
			r.Get("/", controllers.ListTenants(tenantService, logg))
			r.Get("/{tenantId}", controllers.GetTenant(tenantService, logg))
			r.Patch("/{tenantId}/subdomain", controllers.ChangeTenantSubdomain(tenantService, logg))
			r.Post("/{tenantId}/plan", controllers.AssignTenantPlan(tenantService, logg))
			r.Post("/{tenantId}/suspend", controllers.SuspendTenant(tenantService, logg))
		})

		// Storefront routes resolve the tenant from the Host header; a
		// suspended or deleted tenant is rejected before the handler runs.
		r.Route("/storefront", func(r chi.Router) {
			r.Use(middleware.Tenant(resolver, logg))
			r.Get("/context", controllers.StorefrontContext(logg))
		})
	})

	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(middleware.SweepAuth(cfg.Subscription.SweepSecret, logg))
		r.Post("/subscriptions/sweep", controllers.TriggerSweep(sweeper, logg))
	})

	return r
}
