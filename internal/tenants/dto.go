package tenants

import (
	"github.com/google/uuid"
)

// RegisterInput carries everything needed to provision a storefront.
type RegisterInput struct {
	Name         string
	Subdomain    string
	CustomDomain *string
	OwnerID      uuid.UUID
	PlanID       uuid.UUID
	Categories   []string
}

// ChangeSubdomainInput renames a storefront's subdomain.
type ChangeSubdomainInput struct {
	TenantID  uuid.UUID
	Subdomain string
}

// AssignPlanInput moves a tenant onto a plan, restarting its term.
type AssignPlanInput struct {
	TenantID uuid.UUID
	PlanID   uuid.UUID
}
