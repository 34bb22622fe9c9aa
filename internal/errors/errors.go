package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so a wrapped copy still equals its sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Error codes
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeHashingFailed      = "HASHING_FAILED"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeRoleNotFound       = "ROLE_NOT_FOUND"
	CodeSelfDeletion       = "SELF_DELETION"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeAvatarNotFound     = "AVATAR_NOT_FOUND"
	CodePageNotFound       = "PAGE_NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined domain errors
var (
	// Record errors
	ErrValidation     = NewDomainError(CodeValidation, "validation failed")
	ErrEmailExists    = NewDomainError(CodeEmailExists, "email already in use")
	ErrHashingFailed  = NewDomainError(CodeHashingFailed, "failed to hash password")
	ErrStorageFailure = NewDomainError(CodeStorageFailure, "storage failure")

	// User errors
	ErrUserNotFound      = NewDomainError(CodeUserNotFound, "user not found")
	ErrRoleNotFound      = NewDomainError(CodeRoleNotFound, "role not found")
	ErrSelfDeletion      = NewDomainError(CodeSelfDeletion, "users cannot delete themselves")
	ErrIncorrectPassword = NewDomainError(CodeIncorrectPassword, "current password is incorrect")
	ErrAvatarNotFound    = NewDomainError(CodeAvatarNotFound, "avatar not found")

	// Authentication errors
	ErrUnauthorized = NewDomainError(CodeUnauthorized, "unauthorized")
	ErrInvalidToken = NewDomainError(CodeInvalidToken, "invalid or expired token")

	// Input errors
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "invalid input")

	// Content errors
	ErrPageNotFound = NewDomainError(CodePageNotFound, "page not found")

	// System errors
	ErrInternal           = NewDomainError(CodeInternal, "internal server error")
	ErrServiceUnavailable = NewDomainError(CodeServiceUnavailable, "service unavailable")
)

// NewValidationError builds a VALIDATION_ERROR naming the offending field.
func NewValidationError(field, reason string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
	}
}

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

func hasCode(err error, code string) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Code == code
}

func IsValidation(err error) bool { return hasCode(err, CodeValidation) }
func IsUniquenessViolation(err error) bool { return hasCode(err, CodeEmailExists) }
func IsHashingFailure(err error) bool { return hasCode(err, CodeHashingFailed) }
func IsStorageFailure(err error) bool { return hasCode(err, CodeStorageFailure) }
func IsNotFound(err error) bool { return hasCode(err, CodeUserNotFound) }

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case CodeValidation, CodeInvalidInput, CodeRoleNotFound:
		return http.StatusBadRequest

	// 401 Unauthorized
	case CodeUnauthorized, CodeInvalidToken, CodeIncorrectPassword:
		return http.StatusUnauthorized

	// 403 Forbidden
	case CodeSelfDeletion:
		return http.StatusForbidden

	// 404 Not Found
	case CodeUserNotFound, CodeAvatarNotFound, CodePageNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case CodeEmailExists:
		return http.StatusConflict

	// 503 Service Unavailable
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage returns the client-facing message. Storage and hashing
// failures never leak the underlying cause.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ErrInternal.Message
}
