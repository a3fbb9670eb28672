package enums

import "fmt"

// TenantStatus tracks the subscription lifecycle state of a tenant.
type TenantStatus string

const (
	// TenantStatusActive covers current tenants, including trials and
	// tenants with no plan at all.
	TenantStatusActive TenantStatus = "active"
	// TenantStatusExpired means past due but still inside the grace period.
	TenantStatusExpired TenantStatus = "expired"
	// TenantStatusSuspended means past the grace period; requests are blocked.
	TenantStatusSuspended TenantStatus = "suspended"
	// TenantStatusDeleted is terminal; rows are never hard-deleted while
	// referenced by orders.
	TenantStatusDeleted TenantStatus = "deleted"
)

var validTenantStatuses = []TenantStatus{
	TenantStatusActive,
	TenantStatusExpired,
	TenantStatusSuspended,
	TenantStatusDeleted,
}

// String implements fmt.Stringer.
func (s TenantStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TenantStatus.
func (s TenantStatus) IsValid() bool {
	for _, candidate := range validTenantStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Blocked reports whether requests for a tenant in this state must be denied
// before reaching business logic.
func (s TenantStatus) Blocked() bool {
	return s == TenantStatusSuspended || s == TenantStatusDeleted
}

// ParseTenantStatus converts raw input into a TenantStatus.
func ParseTenantStatus(value string) (TenantStatus, error) {
	for _, candidate := range validTenantStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tenant status %q", value)
}
