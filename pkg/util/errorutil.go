package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the support core taxonomy.
const (
	CodeDuplicateTicket    = "DUPLICATE_TICKET"
	CodeChannelUnavailable = "CHANNEL_UNAVAILABLE"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeDeliveryFailed     = "DELIVERY_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeDeletionFailed     = "DELETION_FAILED"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors. Every condition in the
// taxonomy is local and recoverable; none is process-fatal.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewDuplicateTicket(requesterID string) error {
	return NewDomainError(CodeDuplicateTicket, "an active ticket already exists for this requester",
		http.StatusConflict, map[string]any{"requester_id": requesterID})
}

func NewChannelUnavailable(err error) error {
	return &DomainError{
		Code:       CodeChannelUnavailable,
		Message:    "support channel could not be provisioned",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

func NewDeliveryFailed(message string, err error) error {
	return &DomainError{
		Code:       CodeDeliveryFailed,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given taxonomy code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
