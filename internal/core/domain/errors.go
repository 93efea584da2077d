package domain

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrUserExists            = errors.New("email already registered")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingToken          = errors.New("missing authentication token")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrForbidden             = errors.New("access forbidden")
	ErrTravelRequestNotFound = errors.New("travel request not found")
)

// ValidationError carries a human-readable description of the rule that
// rejected the input. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
