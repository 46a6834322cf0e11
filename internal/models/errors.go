package models

import "errors"

var (
	ErrNotFound        = errors.New("model not found")
	ErrIndexOutOfRange = errors.New("model index out of range")
)

// ValidationError carries a message fit to show the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
