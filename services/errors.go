package services

import "errors"

// Domain errors. Operations wrap them with fmt.Errorf("...: %w", ErrX) and
// handlers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConflict            = errors.New("conflict")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired OTP")
)

// DetailError carries a caller-facing message alongside a sentinel kind.
type DetailError struct {
	Kind    error
	Message string
}

func (e *DetailError) Error() string { return e.Message }

func (e *DetailError) Unwrap() error { return e.Kind }

func detail(kind error, msg string) error {
	return &DetailError{Kind: kind, Message: msg}
}
