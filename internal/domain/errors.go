package domain

import (
	"errors"
	"fmt"
)

// Common domain errors raised while decoding answers and linting questions.
var (
	// ErrEmptyAnswer indicates that a submitted answer is empty or whitespace.
	ErrEmptyAnswer = errors.New("empty answer")

	// ErrMalformedAnswer indicates that a structured user answer could not be
	// decoded into the shape its question type requires.
	ErrMalformedAnswer = errors.New("malformed answer")

	// ErrMalformedCorrectAnswer indicates that a stored correct answer could
	// not be decoded. This is a data defect, not a user error.
	ErrMalformedCorrectAnswer = errors.New("malformed correct answer")

	// ErrUnknownQuestionType indicates a question type tag the engine does
	// not support.
	ErrUnknownQuestionType = errors.New("unknown question type")

	// ErrAnswerTooLarge indicates that an answer exceeds the configured size
	// limit.
	ErrAnswerTooLarge = errors.New("answer too large")

	// ErrBlankCountMismatch indicates that the blanks implied by a question
	// text disagree with its authored blank descriptors.
	ErrBlankCountMismatch = errors.New("blank count mismatch")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// DecodeError reports a failure to decode an encoded answer. Kind is the
// shape that was expected, e.g. "object", "array" or "zone assignment".
type DecodeError struct {
	// Side is "user" or "correct".
	Side string

	// Kind is the expected encoding.
	Kind string

	// Err is the underlying error, wrapping ErrMalformedAnswer or
	// ErrMalformedCorrectAnswer.
	Err error
}

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: side=%s, kind=%s, err=%v", e.Side, e.Kind, e.Err)
}

// Unwrap returns the underlying error, supporting Go 1.13+ error unwrapping.
func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError creates a DecodeError for the given side. The cause is
// wrapped under the matching sentinel so errors.Is works on either side.
func NewDecodeError(side, kind string, cause error) *DecodeError {
	sentinel := ErrMalformedAnswer
	if side == "correct" {
		sentinel = ErrMalformedCorrectAnswer
	}
	var err error = sentinel
	if cause != nil {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	return &DecodeError{Side: side, Kind: kind, Err: err}
}

// ValidationError represents an error that occurred during validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string

	// Cause optionally classifies the failure, e.g. ErrBlankCountMismatch.
	Cause error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// Unwrap returns the classifying cause, if any.
func (e *ValidationError) Unwrap() error { return e.Cause }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
