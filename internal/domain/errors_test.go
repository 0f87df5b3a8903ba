package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name     string
		side     string
		kind     string
		cause    error
		wantMsg  string
		sentinel error
	}{
		{
			name:     "user side",
			side:     "user",
			kind:     "array",
			cause:    errors.New("unexpected token"),
			wantMsg:  "decode error: side=user, kind=array, err=malformed answer: unexpected token",
			sentinel: ErrMalformedAnswer,
		},
		{
			name:     "correct side",
			side:     "correct",
			kind:     "zone assignment",
			cause:    errors.New("unexpected EOF"),
			wantMsg:  "decode error: side=correct, kind=zone assignment, err=malformed correct answer: unexpected EOF",
			sentinel: ErrMalformedCorrectAnswer,
		},
		{
			name:     "no cause",
			side:     "user",
			kind:     "object",
			wantMsg:  "decode error: side=user, kind=object, err=malformed answer",
			sentinel: ErrMalformedAnswer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDecodeError(tt.side, tt.kind, tt.cause)

			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause, "Should unwrap to the cause")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("Question")
		err.AddError("missing correct answer")

		assert.Equal(t, "validation error for Question: missing correct answer", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("Options")
		err.AddError("blanks on a drag_and_drop question")
		err.AddError("duplicate zone id 2")

		assert.Contains(t, err.Error(), "validation errors for Options")
		assert.Len(t, err.Errors, 2, "Should have two errors")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("Config")

		assert.False(t, err.HasErrors(), "Should not have errors")
		assert.Empty(t, err.Errors, "Errors slice should be empty")
	})

	t.Run("cause", func(t *testing.T) {
		err := NewValidationError("Question")
		err.Cause = ErrBlankCountMismatch
		err.AddError("text has 2 blanks, 3 configured")

		assert.ErrorIs(t, err, ErrBlankCountMismatch)
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrEmptyAnswer, "empty answer"},
		{ErrMalformedAnswer, "malformed answer"},
		{ErrMalformedCorrectAnswer, "malformed correct answer"},
		{ErrUnknownQuestionType, "unknown question type"},
		{ErrAnswerTooLarge, "answer too large"},
		{ErrBlankCountMismatch, "blank count mismatch"},
		{ErrInvalidConfiguration, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error(), "Error message mismatch")
		})
	}
}
