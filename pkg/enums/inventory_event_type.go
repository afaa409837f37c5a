package enums

import "fmt"

// InventoryEventType labels an append-only inventory_events row.
type InventoryEventType string

const (
	InventoryEventActivate   InventoryEventType = "ACTIVATE"
	InventoryEventReactivate InventoryEventType = "REACTIVATE"
	InventoryEventDeactivate InventoryEventType = "DEACTIVATE"
	InventoryEventReceive    InventoryEventType = "RECEIVE"
	InventoryEventDispense   InventoryEventType = "DISPENSE"
	InventoryEventAdjust     InventoryEventType = "ADJUST"
	InventoryEventReserve    InventoryEventType = "RESERVE"
	InventoryEventRelease    InventoryEventType = "RELEASE"
)

var validInventoryEventTypes = []InventoryEventType{
	InventoryEventActivate,
	InventoryEventReactivate,
	InventoryEventDeactivate,
	InventoryEventReceive,
	InventoryEventDispense,
	InventoryEventAdjust,
	InventoryEventReserve,
	InventoryEventRelease,
}

// String implements fmt.Stringer.
func (t InventoryEventType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known event type.
func (t InventoryEventType) IsValid() bool {
	for _, candidate := range validInventoryEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryEventType converts raw input into InventoryEventType.
func ParseInventoryEventType(value string) (InventoryEventType, error) {
	for _, candidate := range validInventoryEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory event type %q", value)
}
