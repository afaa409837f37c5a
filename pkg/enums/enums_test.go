package enums

import "testing"

func TestParseItemStatus(t *testing.T) {
	for _, raw := range []string{"active", "inactive"} {
		status, err := ParseItemStatus(raw)
		if err != nil {
			t.Fatalf("ParseItemStatus(%q): %v", raw, err)
		}
		if !status.IsValid() || status.String() != raw {
			t.Fatalf("unexpected status %q", status)
		}
	}
	if _, err := ParseItemStatus("ACTIVE"); err == nil {
		t.Fatalf("status parsing is case sensitive")
	}
	if ItemStatus("retired").IsValid() {
		t.Fatalf("retired is not a valid status")
	}
}

func TestParseInventoryEventType(t *testing.T) {
	for _, want := range validInventoryEventTypes {
		got, err := ParseInventoryEventType(want.String())
		if err != nil {
			t.Fatalf("ParseInventoryEventType(%q): %v", want, err)
		}
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
	if _, err := ParseInventoryEventType("TRANSFER"); err == nil {
		t.Fatalf("expected TRANSFER to be rejected")
	}
}

func TestItemStatusIsActive(t *testing.T) {
	if !ItemStatusActive.IsActive() || ItemStatusInactive.IsActive() {
		t.Fatalf("only the active status is active")
	}
}
