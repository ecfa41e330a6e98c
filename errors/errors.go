package errors

import (
	"fmt"
)

// Standard error codes
const (
	ErrInvalidRequest      = 400
	ErrNotFound            = 404
	ErrConflict            = 409
	ErrInternalServerError = 500
	ErrServiceUnavailable  = 503

	// Game-specific error codes (1000+)
	ErrInsufficientFunds = 1001
	ErrInvalidAmount     = 1002
	ErrSpinInProgress    = 1003
	ErrBonusNotReady     = 1004
	ErrInvalidBackup     = 1005
	ErrStorageError      = 1006
	ErrConfigError       = 1007
)

// AppError represents a custom application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s [%v]", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code int, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode extracts error code from an error
func GetCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternalServerError
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code int) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// HTTPStatusFromCode maps error codes to HTTP status codes
func HTTPStatusFromCode(code int) int {
	switch code {
	case ErrInvalidRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrConflict:
		return 409
	case ErrServiceUnavailable:
		return 503
	case ErrInsufficientFunds:
		return 400
	case ErrInvalidAmount:
		return 400
	case ErrSpinInProgress:
		return 409
	case ErrBonusNotReady:
		return 409
	case ErrInvalidBackup:
		return 400
	case ErrStorageError:
		return 503
	default:
		return 500
	}
}
