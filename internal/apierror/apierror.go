package apierror

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrConflict          ErrorCode = "CONFLICT"
	ErrBadRequest        ErrorCode = "BAD_REQUEST"
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrStateConflict     ErrorCode = "STATE_CONFLICT"
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrInternalServer    ErrorCode = "INTERNAL_SERVER_ERROR"
)

// APIError is the error shape every workflow step resolves to at the handler
// boundary. RedirectTo carries the canonical step URL for STATE_CONFLICT and
// INSUFFICIENT_FUNDS so handlers can self-correct navigation instead of
// failing hard.
type APIError struct {
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	if code == ErrInternalServer {
		logrus.Error(details)
	}
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewStateConflict signals that a step was invoked against a transaction in
// an incompatible status. step is where the caller should be sent instead.
func NewStateConflict(message, step string) APIError {
	return APIError{
		Code:       ErrStateConflict,
		Message:    message,
		RedirectTo: step,
	}
}

// NewInsufficientFunds fails a flow back to amount entry with a user-visible
// message and no state change.
func NewInsufficientFunds(message, step string) APIError {
	return APIError{
		Code:       ErrInsufficientFunds,
		Message:    message,
		RedirectTo: step,
	}
}

func MapErrorToHTTPStatus(err error) int {
	if apiErr, ok := err.(APIError); ok {
		switch apiErr.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		case ErrStateConflict:
			return http.StatusSeeOther
		case ErrInvalidInput, ErrBadRequest:
			return http.StatusBadRequest
		case ErrInsufficientFunds:
			return http.StatusUnprocessableEntity
		case ErrInternalServer:
			return http.StatusInternalServerError
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
