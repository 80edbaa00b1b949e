package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewNoDataError("no usable records")
		assert.Equal(t, "[NO_DATA] no usable records", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("unexpected EOF")
		err := NewParsingError("failed to open workbook", cause)
		assert.Equal(t, "[PARSING] failed to open workbook: unexpected EOF", err.Error())
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestSchemaAndValidationErrors_CarryFile(t *testing.T) {
	schema := NewSchemaError("upload.xlsx", "no time column found")
	assert.Equal(t, "upload.xlsx", schema.File())
	assert.Contains(t, schema.Error(), "[upload.xlsx] no time column found")

	validation := NewValidationError("upload.xlsx", "2 rows have no usable identifier")
	assert.Equal(t, "upload.xlsx", validation.File())
	assert.Equal(t, ErrTypeValidation, validation.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewStorageError("failed to save workbook", nil).
		WithContext("path", "/tmp/out.xlsx")
	assert.Equal(t, "/tmp/out.xlsx", err.Context["path"])
	assert.Empty(t, err.File())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOK   bool
	}{
		{name: "direct", err: NewNoDataError("x"), wantType: ErrTypeNoData, wantOK: true},
		{name: "wrapped once", err: fmt.Errorf("run failed: %w", NewSchemaError("f.xlsx", "x")), wantType: ErrTypeSchema, wantOK: true},
		{name: "wrapped twice", err: fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", NewConfigError("x", nil))), wantType: ErrTypeConfig, wantOK: true},
		{name: "plain error", err: fmt.Errorf("boom"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TypeOf(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantType, got)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	err := NewValidationError("f.xlsx", "bad rows")
	assert.True(t, IsType(err, ErrTypeValidation))
	assert.False(t, IsType(err, ErrTypeSchema))
	assert.False(t, IsType(nil, ErrTypeSchema))
}

func TestFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "schema is unprocessable", err: NewSchemaError("f.xlsx", "no time column"), wantStatus: http.StatusUnprocessableEntity, wantCode: "SCHEMA"},
		{name: "validation is unprocessable", err: NewValidationError("f.xlsx", "bad rows"), wantStatus: http.StatusUnprocessableEntity, wantCode: "VALIDATION"},
		{name: "no data is unprocessable", err: NewNoDataError("nothing"), wantStatus: http.StatusUnprocessableEntity, wantCode: "NO_DATA"},
		{name: "config is bad request", err: NewConfigError("bad toggle", nil), wantStatus: http.StatusBadRequest, wantCode: "CONFIG"},
		{name: "storage is internal", err: NewStorageError("disk full", nil), wantStatus: http.StatusInternalServerError, wantCode: "STORAGE"},
		{name: "unknown error is internal", err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromAppError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, FromAppError(NewNoDataError("No input files provided.")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), `"error_code":"NO_DATA"`)
	assert.Contains(t, rec.Body.String(), "No input files provided.")
}
