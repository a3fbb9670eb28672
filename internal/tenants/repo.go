package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
	pkgpagination "github.com/storehubhq/storehub-backend/pkg/pagination"
)

// Repository is the authoritative tenant directory.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to tenant operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("status <> ?", enums.TenantStatusDeleted)
}

// FindBySubdomain loads the non-deleted tenant holding the subdomain.
func (r *Repository) FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.live(ctx).Where("subdomain = ?", subdomain).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByCustomDomain loads the non-deleted tenant holding the custom domain.
func (r *Repository) FindByCustomDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.live(ctx).Where("custom_domain = ?", domain).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByID loads a tenant by its UUID, deleted rows included.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Create persists a new tenant row.
func (r *Repository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return fmt.Errorf("tenant is required")
	}
	return r.db.WithContext(ctx).Create(tenant).Error
}

// Update saves the provided tenant.
func (r *Repository) Update(ctx context.Context, tenant *models.Tenant) error {
	if tenant == nil {
		return fmt.Errorf("tenant is required")
	}
	return r.db.WithContext(ctx).Save(tenant).Error
}

// ListPage returns non-deleted tenants newest first using cursor pagination.
func (r *Repository) ListPage(ctx context.Context, limit int, cursor *pkgpagination.Cursor) ([]models.Tenant, error) {
	query := r.live(ctx)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var tenants []models.Tenant
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// ListSweepCandidates returns a page of tenants the subscription sweep must
// evaluate: an expiry is set and the row is not deleted.
func (r *Repository) ListSweepCandidates(ctx context.Context, limit, offset int) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.live(ctx).
		Where("expire_date IS NOT NULL").
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// UpdateStatusConditional applies a status transition only when the persisted
// status still equals the one the caller observed. It reports whether the
// write landed; a lost race is not an error.
func (r *Repository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, observed, target enums.TenantStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ? AND status = ?", id, observed).
		Updates(map[string]any{"status": target, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
