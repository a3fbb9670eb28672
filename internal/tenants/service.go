package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/storehubhq/storehub-backend/internal/notifications"
	"github.com/storehubhq/storehub-backend/internal/plans"
	dbpkg "github.com/storehubhq/storehub-backend/pkg/db"
	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
	pkgerrors "github.com/storehubhq/storehub-backend/pkg/errors"
	"github.com/storehubhq/storehub-backend/pkg/logger"
	pkgpagination "github.com/storehubhq/storehub-backend/pkg/pagination"
)

// subdomainPattern mirrors the CHECK constraint on tenants.subdomain.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]{3,63}$`)

// store is the persistence surface the service needs from the Repository.
type store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	Create(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	ListPage(ctx context.Context, limit int, cursor *pkgpagination.Cursor) ([]models.Tenant, error)
}

// planCatalog resolves plans a tenant may subscribe to.
type planCatalog interface {
	GetAssignable(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

// auditor writes tenant-scoped audit rows under the isolation setting.
type auditor interface {
	WithTenantTx(ctx context.Context, tenantID uuid.UUID, fn func(tx *gorm.DB) error) error
}

// notifier hands lifecycle events to the async dispatcher.
type notifier interface {
	Notify(ctx context.Context, event notifications.Event)
}

// ServiceParams configure the tenant service.
type ServiceParams struct {
	Logger     *logger.Logger
	Repo       store
	Plans      planCatalog
	Audit      auditor
	Cache      Cache
	Notifier   notifier
	BaseDomain string
	Now        func() time.Time
}

// Service owns tenant provisioning and lifecycle changes initiated by
// operators. The subscription sweep owns time-driven status transitions.
type Service struct {
	logg       *logger.Logger
	repo       store
	plans      planCatalog
	audit      auditor
	cache      Cache
	notifier   notifier
	baseDomain string
	now        func() time.Time
}

// NewService validates dependencies and builds a Service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	if params.Plans == nil {
		return nil, fmt.Errorf("plan catalog required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("isolation manager required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("tenant cache required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.BaseDomain == "" {
		return nil, fmt.Errorf("base domain required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:       params.Logger,
		repo:       params.Repo,
		plans:      params.Plans,
		audit:      params.Audit,
		cache:      params.Cache,
		notifier:   params.Notifier,
		baseDomain: params.BaseDomain,
		now:        now,
	}, nil
}

// Register provisions a storefront on an active plan. The expiry is computed
// from the plan's trial or paid term starting now.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.Tenant, error) {
	if !subdomainPattern.MatchString(input.Subdomain) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subdomain must be 3-63 lowercase letters, digits or hyphens")
	}
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	plan, err := s.plans.GetAssignable(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC()
	expire := plans.ExpireDate(*plan, start)
	tenant := &models.Tenant{
		ID:           uuid.New(),
		Name:         input.Name,
		Subdomain:    input.Subdomain,
		CustomDomain: input.CustomDomain,
		Status:       enums.TenantStatusActive,
		PlanID:       &plan.ID,
		StartDate:    start,
		ExpireDate:   &expire,
		OwnerID:      input.OwnerID,
		Categories:   pq.StringArray(input.Categories),
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subdomain or custom domain is already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"tenant_id": tenant.ID.String(),
		"subdomain": tenant.Subdomain,
	})
	s.logg.Info(logCtx, "tenant registered")
	return tenant, nil
}

// GetByID loads a tenant.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return tenant, nil
}

// ListResult is one page of the tenant directory.
type ListResult struct {
	Tenants []models.Tenant
	Cursor  string
}

// List pages through the non-deleted tenant directory, newest first. The
// returned cursor is empty on the last page.
func (s *Service) List(ctx context.Context, params pkgpagination.Params) (*ListResult, error) {
	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cursor is not valid")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListPage(ctx, pkgpagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}

	result := &ListResult{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	result.Tenants = rows
	return result, nil
}

// ChangeSubdomain renames a storefront. Persisting the new value is the
// authoritative step; the routing-reconcile event and the cache invalidation
// follow and may lag behind.
func (s *Service) ChangeSubdomain(ctx context.Context, input ChangeSubdomainInput) (*models.Tenant, error) {
	if !subdomainPattern.MatchString(input.Subdomain) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subdomain must be 3-63 lowercase letters, digits or hyphens")
	}

	tenant, err := s.GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == enums.TenantStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store is deleted")
	}
	if tenant.Subdomain == input.Subdomain {
		return tenant, nil
	}

	previous := tenant.Subdomain
	tenant.Subdomain = input.Subdomain
	if err := s.repo.Update(ctx, tenant); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subdomain is already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant subdomain")
	}

	s.recordAudit(ctx, tenant.ID, enums.EventTenantSubdomainChanged, map[string]string{
		"from": previous,
		"to":   tenant.Subdomain,
	})
	s.notifier.Notify(ctx, notifications.Event{
		Type:       enums.EventTenantSubdomainChanged,
		TenantID:   tenant.ID,
		Subdomain:  tenant.Subdomain,
		Status:     tenant.Status,
		OccurredAt: s.now().UTC(),
	})
	s.invalidateHosts(ctx, previous, tenant.CustomDomain)

	return tenant, nil
}

// AssignPlan moves the tenant onto a plan, restarting the term now and
// clearing any expired state.
func (s *Service) AssignPlan(ctx context.Context, input AssignPlanInput) (*models.Tenant, error) {
	tenant, err := s.GetByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant.Status == enums.TenantStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store is deleted")
	}

	plan, err := s.plans.GetAssignable(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}

	start := s.now().UTC()
	expire := plans.ExpireDate(*plan, start)
	tenant.PlanID = &plan.ID
	tenant.StartDate = start
	tenant.ExpireDate = &expire
	tenant.Status = enums.TenantStatusActive

	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant plan")
	}

	s.invalidateHosts(ctx, tenant.Subdomain, tenant.CustomDomain)
	return tenant, nil
}

// Suspend forces the tenant into the blocked state regardless of its expiry.
func (s *Service) Suspend(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Status == enums.TenantStatusDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "store is deleted")
	}
	if tenant.Status == enums.TenantStatusSuspended {
		return tenant, nil
	}

	tenant.Status = enums.TenantStatusSuspended
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suspend tenant")
	}

	s.recordAudit(ctx, tenant.ID, enums.EventTenantSuspended, map[string]string{"reason": "manual"})
	s.notifier.Notify(ctx, notifications.Event{
		Type:       enums.EventTenantSuspended,
		TenantID:   tenant.ID,
		Subdomain:  tenant.Subdomain,
		Status:     tenant.Status,
		OccurredAt: s.now().UTC(),
	})
	s.invalidateHosts(ctx, tenant.Subdomain, tenant.CustomDomain)

	return tenant, nil
}

// recordAudit writes a tenant_events row through the scoped transaction. The
// audit trail is best effort; a failure is logged, never surfaced.
func (s *Service) recordAudit(ctx context.Context, tenantID uuid.UUID, eventType enums.TenantEventType, payload map[string]string) {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(`{}`)
	}
	err = s.audit.WithTenantTx(ctx, tenantID, func(tx *gorm.DB) error {
		return tx.Create(&models.TenantEvent{
			TenantID:  tenantID,
			EventType: string(eventType),
			Payload:   body,
		}).Error
	})
	if err != nil {
		logCtx := s.logg.WithTenantID(ctx, tenantID.String())
		s.logg.Warn(logCtx, "tenant audit write failed")
	}
}

// invalidateHosts evicts every cached hostname the tenant could resolve by.
func (s *Service) invalidateHosts(ctx context.Context, subdomain string, customDomain *string) {
	if subdomain != "" {
		s.cache.Invalidate(ctx, subdomain+"."+s.baseDomain)
	}
	if customDomain != nil && *customDomain != "" {
		s.cache.Invalidate(ctx, *customDomain)
	}
}
