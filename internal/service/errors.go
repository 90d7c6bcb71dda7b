package service

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrInvalidCredentials is deliberately generic: an unknown username
	// and a wrong password must be indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound means a verified token referenced a user the store no
	// longer has. That is a store/token desync and gets logged.
	ErrNotFound = errors.New("user not found")
)

// ValidationError carries field-level problems with a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// ConflictError reports a uniqueness violation on the named field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// asValidationError converts an ozzo validation result into the
// field-keyed form the API returns. Non-field errors pass through.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for name, fieldErr := range fieldErrs {
		fields[name] = fieldErr.Error()
	}
	return &ValidationError{Fields: fields}
}
