package manga

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by stores, handlers and the importer.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrBadInput   = errors.New("bad input")
	ErrUpstream   = errors.New("upstream failure")
)

// FieldError describes a validation failure of one field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError holds field level validation failures.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Message
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// InputError is a malformed request: empty id list, wrong file type,
// unknown sort key and the like. Its message is shown to the client as is.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrBadInput }

// BadInput returns an InputError with the given message.
func BadInput(message string) error {
	return &InputError{Message: message}
}
