package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/storehubhq/storehub-backend/pkg/enums"
)

// Event is one tenant lifecycle notification. Delivery is at-least-once with
// no ordering guarantee relative to the producing operation.
type Event struct {
	Type       enums.TenantEventType `json:"type"`
	TenantID   uuid.UUID             `json:"tenantId"`
	Subdomain  string                `json:"subdomain"`
	Status     enums.TenantStatus    `json:"status"`
	OccurredAt time.Time             `json:"occurredAt"`
}

// DedupeKey identifies an event for idempotent downstream handling: one
// notification per tenant and target status.
func (e Event) DedupeKey() string {
	return e.TenantID.String() + ":" + string(e.Type)
}
