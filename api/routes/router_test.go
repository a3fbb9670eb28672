package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storehubhq/storehub-backend/internal/subscriptions"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	"github.com/storehubhq/storehub-backend/pkg/config"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	pkgpagination "github.com/storehubhq/storehub-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubResolver struct {
	snapshots map[string]*tenants.Snapshot
}

func (s *stubResolver) Resolve(_ context.Context, rawHost string) (*tenants.Snapshot, error) {
	snap, ok := s.snapshots[rawHost]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store does not exist")
	}
	return snap, nil
}

type stubTenantService struct {
	tenant *models.Tenant
}

func (s *stubTenantService) Register(context.Context, tenants.RegisterInput) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubTenantService) ChangeSubdomain(context.Context, tenants.ChangeSubdomainInput) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubTenantService) AssignPlan(context.Context, tenants.AssignPlanInput) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubTenantService) Suspend(context.Context, uuid.UUID) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubTenantService) GetByID(context.Context, uuid.UUID) (*models.Tenant, error) {
	return s.tenant, nil
}

func (s *stubTenantService) List(context.Context, pkgpagination.Params) (*tenants.ListResult, error) {
	return &tenants.ListResult{}, nil
}

type stubPlanService struct{}

func (stubPlanService) List(context.Context) ([]models.Plan, error) {
	return nil, nil
}

type stubSweeper struct {
	runs int
}

func (s *stubSweeper) Run(context.Context) (*subscriptions.Summary, error) {
	s.runs++
	return &subscriptions.Summary{SweptAt: time.Now().UTC()}, nil
}

func testRouterConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Tenancy.BaseDomain = "storehub.app"
	cfg.Subscription.SweepSecret = "swp_secret"
	return cfg
}

func routerTenant(status enums.TenantStatus) *models.Tenant {
	expire := time.Now().UTC().AddDate(0, 1, 0)
	return &models.Tenant{
		ID:         uuid.New(),
		Name:       "Acme Shoes",
		Subdomain:  "acme",
		Status:     status,
		StartDate:  time.Now().UTC(),
		ExpireDate: &expire,
		OwnerID:    uuid.New(),
	}
}

func newTestRouter(t *testing.T, resolver *stubResolver) (http.Handler, *stubSweeper) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if resolver == nil {
		resolver = &stubResolver{}
	}
	sweeper := &stubSweeper{}
	router := NewRouter(
		testRouterConfig(),
		logg,
		stubPinger{},
		stubPinger{},
		nil,
		resolver,
		&stubTenantService{tenant: routerTenant(enums.TenantStatusActive)},
		stubPlanService{},
		sweeper,
	)
	return router, sweeper
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestRouterRegisterTenant(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	body := []byte(`{
		"name": "Acme Shoes",
		"subdomain": "acme",
		"ownerId": "` + uuid.NewString() + `",
		"planId": "` + uuid.NewString() + `"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tenants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterStorefrontContext(t *testing.T) {
	tenant := routerTenant(enums.TenantStatusActive)
	resolver := &stubResolver{snapshots: map[string]*tenants.Snapshot{
		"acme.storehub.app": {Tenant: *tenant, CachedAt: time.Now().UTC()},
	}}
	router, _ := newTestRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "http://acme.storehub.app/api/v1/storefront/context", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterStorefrontSuspended(t *testing.T) {
	tenant := routerTenant(enums.TenantStatusSuspended)
	resolver := &stubResolver{snapshots: map[string]*tenants.Snapshot{
		"acme.storehub.app": {Tenant: *tenant, CachedAt: time.Now().UTC()},
	}}
	router, _ := newTestRouter(t, resolver)

	req := httptest.NewRequest(http.MethodGet, "http://acme.storehub.app/api/v1/storefront/context", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestRouterStorefrontUnknownHost(t *testing.T) {
	router, _ := newTestRouter(t, &stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "http://ghost.storehub.app/api/v1/storefront/context", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestRouterSweepRequiresSecret(t *testing.T) {
	router, sweeper := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/subscriptions/sweep", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if sweeper.runs != 0 {
		t.Fatalf("expected no sweep runs, got %d", sweeper.runs)
	}
}

func TestRouterSweepAuthorized(t *testing.T) {
	router, sweeper := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/internal/v1/subscriptions/sweep", nil)
	req.Header.Set("Authorization", "Bearer swp_secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if sweeper.runs != 1 {
		t.Fatalf("expected 1 sweep run, got %d", sweeper.runs)
	}
}
