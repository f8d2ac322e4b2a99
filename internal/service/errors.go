package service

import (
	"errors"
	"fmt"
)

// Errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidation         = errors.New("validation failed")

	ErrUserNotFound       = errors.New("user not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrOrderNotFound      = errors.New("service order not found")

	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already in use")
	ErrWhatsAppExists = errors.New("whatsapp number already registered")
)

// validationError wraps ErrValidation with a field specific message.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
