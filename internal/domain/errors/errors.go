package domainerrors

import "errors"

type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e DomainError) Error() string { return e.Message }

func (e DomainError) Unwrap() error { return e.Cause }

// Is matches by code so callers can test against the catalog below.
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	return ok && t.Code == e.Code
}

func New(code, message string, details map[string]any) DomainError {
	return DomainError{Code: code, Message: message, Details: details}
}

// Wrap attaches cause to a catalog error, keeping its code and message.
func Wrap(base DomainError, cause error) DomainError {
	base.Cause = cause
	return base
}

// WithMessage returns base with a different user-facing message.
func WithMessage(base DomainError, message string) DomainError {
	base.Message = message
	return base
}

// As extracts the DomainError in err's chain.
func As(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return DomainError{}, false
}

var (
	ErrValidation       = DomainError{Code: "VALIDATION_ERROR", Message: "Invalid request"}
	ErrNoSession        = DomainError{Code: "NO_SESSION", Message: "No session"}
	ErrUserNotFound     = DomainError{Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrInvalidOTP       = DomainError{Code: "INVALID_OTP", Message: "Failed to verify OTP"}
	ErrFileNotFound     = DomainError{Code: "FILE_NOT_FOUND", Message: "File not found"}
	ErrFileTooLarge     = DomainError{Code: "FILE_TOO_LARGE", Message: "File is too large"}
	ErrInsufficientAuth = DomainError{Code: "INSUFFICIENT_AUTH", Message: "Insufficient permissions"}
	ErrBackend          = DomainError{Code: "BACKEND_ERROR", Message: "Something went wrong"}
	ErrInternal         = DomainError{Code: "INTERNAL_ERROR", Message: "Internal server error"}
)
