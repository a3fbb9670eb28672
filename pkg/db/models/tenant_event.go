package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TenantEvent is an audit row for tenant-scoped lifecycle changes. The table
// carries a row-level security policy keyed on app.tenant_id.
type TenantEvent struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	EventType string          `gorm:"column:event_type;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table name for GORM.
func (TenantEvent) TableName() string { return "tenant_events" }
