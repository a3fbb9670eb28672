package plans

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storehubhq/storehub-backend/pkg/db/models"
	"github.com/storehubhq/storehub-backend/pkg/enums"
)

// Repository reads and writes billing plans.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to plan operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a plan by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListActive returns every plan tenants may currently subscribe to.
func (r *Repository) ListActive(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.PlanStatusActive).
		Order("price, name").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Create persists a new plan row.
func (r *Repository) Create(ctx context.Context, plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan is required")
	}
	return r.db.WithContext(ctx).Create(plan).Error
}
