package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/storehubhq/storehub-backend/pkg/enums"
)

// Tenant is the canonical storefront row. At most one non-deleted tenant may
// hold a given subdomain or custom domain; the partial unique indexes live in
// the migrations.
type Tenant struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Subdomain    string             `gorm:"column:subdomain;not null"`
	CustomDomain *string            `gorm:"column:custom_domain"`
	Status       enums.TenantStatus `gorm:"column:status;type:tenant_status;not null;default:'active'"`
	PlanID       *uuid.UUID         `gorm:"column:plan_id;type:uuid"`
	StartDate    time.Time          `gorm:"column:start_date;not null"`
	ExpireDate   *time.Time         `gorm:"column:expire_date"`
	OwnerID      uuid.UUID          `gorm:"column:owner_id;type:uuid;not null"`
	Categories   pq.StringArray     `gorm:"column:categories;type:text[]"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name for GORM.
func (Tenant) TableName() string { return "tenants" }
