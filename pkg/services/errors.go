package services

import "errors"

var ErrValidation = errors.New("validation failed")

// ValidationError is returned before any request is made when required input
// is missing or out of range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
