package services

import "errors"

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password does not meet the strength policy")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrPermissionDenied   = errors.New("permission denied")
)

// ValidationError carries a field-level message back to the handler layer.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
