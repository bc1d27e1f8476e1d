package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/domain/apperr"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantMsg    string
		wantDetail string
	}{
		{"not found", apperr.NotFound("application %s not found", "APP-1"), http.StatusNotFound, "application APP-1 not found", ""},
		{"forbidden", apperr.Forbidden("analyst only"), http.StatusForbidden, "analyst only", ""},
		{"invalid state", fmt.Errorf("wrap: %w", apperr.InvalidState("cannot submit from approved")), http.StatusBadRequest, "cannot submit from approved", ""},
		{"validation", apperr.Validation("missing fields", apperr.FieldError{Field: "age", Message: "is required"}), http.StatusBadRequest, "missing fields", "age"},
		{"internal hides cause", apperr.Internal("save application", errors.New("dsn password=secret")), http.StatusInternalServerError, "save application", ""},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "internal error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			if err := writeError(c, tt.err); err != nil {
				t.Fatalf("writeError: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("error = %q, want %q", body.Error, tt.wantMsg)
			}
			if tt.wantDetail != "" && (len(body.Details) != 1 || body.Details[0].Field != tt.wantDetail) {
				t.Fatalf("details = %+v", body.Details)
			}
		})
	}
}
