package enums

import "fmt"

// ItemStatus tracks whether a station still stocks an activated catalog code.
// Rows are never deleted; deactivation flips the status.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusInactive ItemStatus = "inactive"
)

var validItemStatuses = []ItemStatus{
	ItemStatusActive,
	ItemStatusInactive,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsActive reports whether the station currently stocks the code.
func (s ItemStatus) IsActive() bool {
	return s == ItemStatusActive
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
