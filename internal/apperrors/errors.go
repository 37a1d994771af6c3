package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested state transition is not allowed
// from the resource's current state.
var ErrConflict = errors.New("operation conflicts with current state")

// ErrInsufficientStock indicates that a stock allocation could not be satisfied
// from the available batch quantities.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrOverRelease indicates a release that would push a batch's available
// quantity above its original quantity. Guards against double-reversal.
var ErrOverRelease = errors.New("release exceeds original batch quantity")

// ErrUnbalancedPosting indicates a posting whose debit and credit side are the
// same account, or whose amount is not positive. It should never surface to a
// user in correct operation.
var ErrUnbalancedPosting = errors.New("posting is not balanced")

// AppError wraps a lower-level error with a status code and message.
// Repositories use it for infrastructure failures that carry no sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
