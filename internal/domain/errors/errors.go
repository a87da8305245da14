package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrBadRequest        = errors.New("bad request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidAddress    = errors.New("invalid stacks address")
	ErrWrongNetwork      = errors.New("address belongs to another network")
	ErrTipSettled        = errors.New("tip already settled")
	ErrSigningFailed     = errors.New("signing failed")
	ErrActivityTimeout   = errors.New("custody activity timed out")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingSalt       = errors.New("wallet encryption salt is not configured")
)

// Error codes rendered in API responses
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeSigningFailed   = "SIGNING_FAILED"
	CodeBroadcastFailed = "BROADCAST_FAILED"
	CodeCustodyFailed   = "CUSTODY_FAILED"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// RemoteActivityError is returned when the custody provider finishes an
// activity in a state other than completed.
type RemoteActivityError struct {
	ActivityID string
	Status     string
}

func (e *RemoteActivityError) Error() string {
	return fmt.Sprintf("custody activity %s ended with status %s", e.ActivityID, e.Status)
}

// BroadcastError carries the node's rejection reason for a transaction.
type BroadcastError struct {
	TxID    string
	Reason  string
	Message string
}

func (e *BroadcastError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("broadcast rejected: %s (%s)", e.Message, e.Reason)
	}
	return "broadcast rejected: " + e.Message
}
