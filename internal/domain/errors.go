package domain

import (
	"errors"
	"fmt"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Error codes surfaced by the client core.
const (
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeSubmissionFailed = "SUBMISSION_FAILED"
	CodeFetchFailed      = "FETCH_FAILED"
	CodeAuthFailed       = "AUTH_FAILED"
	CodeNetwork          = "NETWORK_ERROR"
)

// Standard domain error constructors.

// ErrAuthRequired blocks a write attempted without an identity.
func ErrAuthRequired(msg string) *AppError {
	return &AppError{Code: CodeAuthRequired, Message: msg, Status: 401}
}

// ErrValidation is a local draft check failure; no network call was made.
func ErrValidation(msg string) *AppError {
	return &AppError{Code: CodeValidationFailed, Message: msg, Status: 400}
}

func ErrSubmission(msg string, cause error) *AppError {
	return &AppError{Code: CodeSubmissionFailed, Message: msg, Status: 502, Cause: cause}
}

func ErrFetch(collection string, cause error) *AppError {
	return &AppError{Code: CodeFetchFailed, Message: fmt.Sprintf("load %s", collection), Status: 502, Cause: cause}
}

func ErrAuthFailed(msg string, cause error) *AppError {
	return &AppError{Code: CodeAuthFailed, Message: msg, Status: 401, Cause: cause}
}

func ErrNetwork(msg string, cause error) *AppError {
	return &AppError{Code: CodeNetwork, Message: msg, Status: 503, Cause: cause}
}

// IsCode reports whether err is, or wraps, an AppError with the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
