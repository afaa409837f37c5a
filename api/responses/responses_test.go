package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"code": "GAUZE-4X4"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["code"] != "GAUZE-4X4" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{pkgerrors.New(pkgerrors.CodeNotFound, "catalog code not found"), http.StatusNotFound, "catalog code not found"},
		{pkgerrors.New(pkgerrors.CodeInvalidCode, "code is required"), http.StatusBadRequest, "code is required"},
		{pkgerrors.New(pkgerrors.CodeDuplicateActivation, "item already active for station"), http.StatusConflict, "item already active for station"},
		{pkgerrors.New(pkgerrors.CodeProfileLoad, "apply profile surgical_station"), http.StatusUnprocessableEntity, "apply profile surgical_station"},
		{pkgerrors.New(pkgerrors.CodeDependency, "search catalog"), http.StatusServiceUnavailable, "dependency unavailable"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), logger.Nop(), w, tc.err)

		if w.Code != tc.status {
			t.Fatalf("%v: expected status %d got %d", tc.err, tc.status, w.Code)
		}
		var body types.ErrorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode error envelope: %v", err)
		}
		if body.Error.Message != tc.msg {
			t.Fatalf("%v: expected message %q got %q", tc.err, tc.msg, body.Error.Message)
		}
	}
}

func TestWriteErrorIncludesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeNotFound, "catalog code not found").
		WithDetails(map[string]any{"code": "FAKE-CODE"})
	WriteError(context.Background(), nil, w, err)

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["code"] != "FAKE-CODE" {
		t.Fatalf("expected details in public payload, got %v", body.Error.Details)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("disk on fire"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal error leaked message %q", body.Error.Message)
	}
	if body.Error.Details != nil {
		t.Fatalf("internal error must not expose details")
	}
}
