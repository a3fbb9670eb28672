package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storehubhq/storehub-backend/pkg/enums"
)

// Plan captures the billing period metadata for a subscription plan.
type Plan struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	Status         enums.PlanStatus `gorm:"column:status;type:plan_status;not null;default:'active'"`
	DurationMonths int              `gorm:"column:duration_months;not null"`
	TrialDays      int              `gorm:"column:trial_days;not null;default:0"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CurrencyCode   string           `gorm:"column:currency_code;not null;default:'USD'"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name for GORM.
func (Plan) TableName() string { return "plans" }
