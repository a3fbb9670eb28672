package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storehubhq/storehub-backend/api/responses"
	"github.com/storehubhq/storehub-backend/api/validators"
	"github.com/storehubhq/storehub-backend/internal/tenants"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	pkgpagination "github.com/storehubhq/storehub-backend/pkg/pagination"
)

// TenantService is the lifecycle surface the tenant controllers call.
type TenantService interface {
	Register(ctx context.Context, input tenants.RegisterInput) (*models.Tenant, error)
	ChangeSubdomain(ctx context.Context, input tenants.ChangeSubdomainInput) (*models.Tenant, error)
	AssignPlan(ctx context.Context, input tenants.AssignPlanInput) (*models.Tenant, error)
	Suspend(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, params pkgpagination.Params) (*tenants.ListResult, error)
}

type registerTenantRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=120"`
	Subdomain    string   `json:"subdomain" validate:"required,min=3,max=63"`
	CustomDomain *string  `json:"customDomain,omitempty" validate:"omitempty,fqdn"`
	OwnerID      string   `json:"ownerId" validate:"required,uuid4"`
	PlanID       string   `json:"planId" validate:"required,uuid4"`
	Categories   []string `json:"categories,omitempty" validate:"omitempty,max=10,dive,min=2,max=40"`
}

type changeSubdomainRequest struct {
	Subdomain string `json:"subdomain" validate:"required,min=3,max=63"`
}

type assignPlanRequest struct {
	PlanID string `json:"planId" validate:"required,uuid4"`
}

type tenantResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Subdomain    string     `json:"subdomain"`
	CustomDomain *string    `json:"customDomain,omitempty"`
	Status       string     `json:"status"`
	PlanID       *string    `json:"planId,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	ExpireDate   *time.Time `json:"expireDate,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
}

func newTenantResponse(tenant *models.Tenant) tenantResponse {
	resp := tenantResponse{
		ID:           tenant.ID.String(),
		Name:         tenant.Name,
		Subdomain:    tenant.Subdomain,
		CustomDomain: tenant.CustomDomain,
		Status:       tenant.Status.String(),
		StartDate:    tenant.StartDate,
		ExpireDate:   tenant.ExpireDate,
		Categories:   []string(tenant.Categories),
	}
	if tenant.PlanID != nil {
		planID := tenant.PlanID.String()
		resp.PlanID = &planID
	}
	return resp
}

// RegisterTenant provisions a new storefront.
func RegisterTenant(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body registerTenantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ownerID, err := uuid.Parse(body.OwnerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ownerId must be a UUID"))
			return
		}
		planID, err := uuid.Parse(body.PlanID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "planId must be a UUID"))
			return
		}

		tenant, err := svc.Register(ctx, tenants.RegisterInput{
			Name:         validators.SanitizeString(body.Name, 120),
			Subdomain:    body.Subdomain,
			CustomDomain: body.CustomDomain,
			OwnerID:      ownerID,
			PlanID:       planID,
			Categories:   body.Categories,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newTenantResponse(tenant))
	}
}

// ChangeTenantSubdomain renames a storefront's subdomain.
func ChangeTenantSubdomain(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := tenantIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body changeSubdomainRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenant, err := svc.ChangeSubdomain(ctx, tenants.ChangeSubdomainInput{
			TenantID:  tenantID,
			Subdomain: body.Subdomain,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

// AssignTenantPlan moves a storefront onto a plan.
func AssignTenantPlan(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := tenantIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body assignPlanRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		planID, err := uuid.Parse(body.PlanID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "planId must be a UUID"))
			return
		}

		tenant, err := svc.AssignPlan(ctx, tenants.AssignPlanInput{
			TenantID: tenantID,
			PlanID:   planID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

// SuspendTenant manually suspends a storefront.
func SuspendTenant(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := tenantIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenant, err := svc.Suspend(ctx, tenantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

// GetTenant loads one storefront by id.
func GetTenant(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID, err := tenantIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenant, err := svc.GetByID(ctx, tenantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newTenantResponse(tenant))
	}
}

// ListTenants pages through the tenant directory.
func ListTenants(svc TenantService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pkgpagination.DefaultLimit, 1, pkgpagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.List(ctx, pkgpagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]tenantResponse, 0, len(result.Tenants))
		for i := range result.Tenants {
			items = append(items, newTenantResponse(&result.Tenants[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"tenants": items,
			"cursor":  result.Cursor,
		})
	}
}

func tenantIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "tenantId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "tenantId must be a UUID")
	}
	return id, nil
}
