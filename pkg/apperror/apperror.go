package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTransient     = errors.New("transient failure")
	ErrPersistence   = errors.New("persistence failure")
	ErrUnavailable   = errors.New("store unavailable")
	ErrQueryRejected = errors.New("query rejected")
	ErrQueryFailed   = errors.New("query execution failed")
	ErrInternal      = errors.New("internal error")
)

type AppError struct {
	BaseError error
	Message   string
	Details   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (Details: %s, Cause: %v)", e.BaseError.Error(), e.Message, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s (Details: %s)", e.BaseError.Error(), e.Message, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.BaseError
}

func NewAppError(base error, msg, details string, err error) *AppError {
	return &AppError{BaseError: base, Message: msg, Details: details, Err: err}
}

func NewNotFound(resource, identifier string) *AppError {
	msg := fmt.Sprintf("%s not found", resource)
	details := fmt.Sprintf("%s with identifier '%s' was not found", resource, identifier)
	return NewAppError(ErrNotFound, msg, details, nil)
}

func NewInvalidInput(details string, err error) *AppError {
	return NewAppError(ErrInvalidInput, "Invalid input provided", details, err)
}

// NewTransient marks a failure as retryable: an external collaborator or the
// store failed in a way a later attempt may recover from.
func NewTransient(details string, err error) *AppError {
	return NewAppError(ErrTransient, "Transient external failure", details, err)
}

func NewPersistence(details string, err error) *AppError {
	return NewAppError(ErrPersistence, "Persistence failure", details, err)
}

// NewUnavailable signals a store-connectivity loss that affects every record,
// not only the one in flight. Batch processing treats it as fatal.
func NewUnavailable(details string, err error) *AppError {
	return NewAppError(ErrUnavailable, "Store unavailable", details, err)
}

func NewQueryRejected(details string) *AppError {
	return NewAppError(ErrQueryRejected, "Query rejected by safety gate", details, nil)
}

func NewQueryFailed(details string, err error) *AppError {
	return NewAppError(ErrQueryFailed, "Query execution failed", details, err)
}

func NewInternal(details string, err error) *AppError {
	return NewAppError(ErrInternal, "An internal error occurred", details, err)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrUnavailable)
}

func ToHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrQueryRejected) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrQueryFailed) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (e *AppError) ToJSON() gin.H {
	return gin.H{
		"error":   e.BaseError.Error(),
		"message": e.Message,
	}
}
