package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned by every lookup that finds no row for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials wrong email or password at login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrCategoryInUse a category still referenced by products cannot be deleted
	ErrCategoryInUse = errors.New("category is in use by products")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field rejected by a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError returns nil when errs is empty.
func NewValidationError(errs ...FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// IsNotFound reports whether err is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
