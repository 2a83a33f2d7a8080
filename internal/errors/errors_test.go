package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name:     "simple message",
			apiError: New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format"),
			want:     "Invalid request format",
		},
		{
			name:     "empty message",
			apiError: New(http.StatusInternalServerError, "INTERNAL_ERROR", ""),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestMissingKeyToAPIError(t *testing.T) {
	apiErr := MissingKey(NewMissingKeyError("Symbol", "prices"))

	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "MISSING_KEY", apiErr.ErrorCode)
	assert.Contains(t, apiErr.Message, `"Symbol"`)

	details, ok := apiErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Symbol", details["key"])
	assert.Equal(t, []string{"prices"}, details["sources"])
}

func TestInputMissingToAPIError(t *testing.T) {
	apiErr := InputMissing(NewInputMissingError("prices", "sectors"))

	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "INPUT_MISSING", apiErr.ErrorCode)
	assert.Equal(t, "required input not supplied: prices, sectors", apiErr.Message)
}

func TestValidationHelpers(t *testing.T) {
	single := ErrValidation("sector", "too long")
	assert.Equal(t, "VALIDATION_FAILED", single.ErrorCode)
	assert.Equal(t, ValidationError{Field: "sector", Message: "too long"}, single.Details)

	multi := NewValidationErrors([]ValidationError{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}})
	details, ok := multi.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, details.Errors, 2)
}
