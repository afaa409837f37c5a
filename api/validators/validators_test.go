package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
)

type movementBody struct {
	Quantity int    `json:"quantity" validate:"gt=0"`
	Remarks  string `json:"remarks" validate:"max=10"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity": 3}`))
	var body movementBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", body.Quantity)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity": 0}`))
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := typed.Details().(map[string]string)
	if details["quantity"] != "must be greater than 0" {
		t.Fatalf("unexpected details %v", details)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity": 1, "price": 2}`))
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestDecodeOptionalJSONBody(t *testing.T) {
	var body struct {
		StationID string `json:"station_id"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	if err := DecodeOptionalJSONBody(req, &body); err != nil {
		t.Fatalf("empty body should be accepted: %v", err)
	}
	req = httptest.NewRequest("POST", "/", strings.NewReader(""))
	if err := DecodeJSONBody(req, &body); err == nil {
		t.Fatal("empty body should be rejected on required-body routes")
	}
}

func TestParseQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=20&low_stock=true&bad=x", nil)

	if v, err := ParseQueryInt(req, "limit", 50, 1, 200); err != nil || v != 20 {
		t.Fatalf("expected 20, got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 50, 1, 200); err != nil || v != 50 {
		t.Fatalf("expected default 50, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "limit", 50, 1, 10); err == nil {
		t.Fatal("expected out of range error")
	}
	if v, err := ParseQueryBool(req, "low_stock"); err != nil || !v {
		t.Fatalf("expected true, got %v (%v)", v, err)
	}
	if _, err := ParseQueryBool(req, "bad"); err == nil {
		t.Fatal("expected boolean parse error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  gauze  ", 3); got != "gau" {
		t.Fatalf("unexpected %q", got)
	}
}
