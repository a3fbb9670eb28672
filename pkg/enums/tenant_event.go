package enums

import "fmt"

// TenantEventType names the lifecycle events published to the notification
// dispatcher.
type TenantEventType string

const (
	EventTenantExpired          TenantEventType = "tenant.expired"
	EventTenantSuspended        TenantEventType = "tenant.suspended"
	EventTenantSubdomainChanged TenantEventType = "tenant.subdomain_changed"
)

var validTenantEventTypes = []TenantEventType{
	EventTenantExpired,
	EventTenantSuspended,
	EventTenantSubdomainChanged,
}

// String implements fmt.Stringer.
func (t TenantEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TenantEventType.
func (t TenantEventType) IsValid() bool {
	for _, candidate := range validTenantEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTenantEventType converts raw input into a TenantEventType.
func ParseTenantEventType(value string) (TenantEventType, error) {
	for _, candidate := range validTenantEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tenant event type %q", value)
}
