package app_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KasumiMercury/primind-trigger-engine/internal/app"
)

func TestNewValidationErrorSuccess(t *testing.T) {
	tests := []struct {
		name            string
		field           string
		message         string
		expectedError   string
		expectedField   string
		expectedMessage string
	}{
		{
			name:            "id validation error",
			field:           "id",
			message:         "must be a valid UUID",
			expectedError:   "validation error: id - must be a valid UUID",
			expectedField:   "id",
			expectedMessage: "must be a valid UUID",
		},
		{
			name:            "message validation error",
			field:           "message",
			message:         "message cannot be empty",
			expectedError:   "validation error: message - message cannot be empty",
			expectedField:   "message",
			expectedMessage: "message cannot be empty",
		},
		{
			name:            "scheduled_time validation error",
			field:           "scheduled_time",
			message:         "must be in the future",
			expectedError:   "validation error: scheduled_time - must be in the future",
			expectedField:   "scheduled_time",
			expectedMessage: "must be in the future",
		},
		{
			name:            "location validation error",
			field:           "location",
			message:         "latitude out of range",
			expectedError:   "validation error: location - latitude out of range",
			expectedField:   "location",
			expectedMessage: "latitude out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := app.NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedField, err.Field)
			assert.Equal(t, tt.expectedMessage, err.Message)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}

func TestIsValidationErrorSuccess(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "is ValidationError",
			err:      app.NewValidationError("field", "message"),
			expected: true,
		},
		{
			name:     "wrapped ValidationError",
			err:      fmt.Errorf("wrapped: %w", app.NewValidationError("field", "message")),
			expected: true,
		},
		{
			name:     "double wrapped ValidationError",
			err:      fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", app.NewValidationError("field", "message"))),
			expected: true,
		},
		{
			name:     "not ValidationError - generic error",
			err:      errors.New("generic error"),
			expected: false,
		},
		{
			name:     "not ValidationError - nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "not ValidationError - wrapped generic error",
			err:      fmt.Errorf("wrapped: %w", errors.New("generic error")),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := app.IsValidationError(tt.err)

			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidationErrorTypeAssertionSuccess(t *testing.T) {
	err := app.NewValidationError("field", "message")

	var validationErr *app.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "field", validationErr.Field)
	assert.Equal(t, "message", validationErr.Message)
}

func TestSentinelErrorsSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "ErrValidation exists",
			err:  app.ErrValidation,
		},
		{
			name: "ErrNotFound exists",
			err:  app.ErrNotFound,
		},
		{
			name: "ErrScheduling exists",
			err:  app.ErrScheduling,
		},
		{
			name: "ErrPersistence exists",
			err:  app.ErrPersistence,
		},
		{
			name: "ErrInternalError exists",
			err:  app.ErrInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.Error(t, tt.err)
		})
	}
}
