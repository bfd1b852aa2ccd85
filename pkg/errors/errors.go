package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrSessionNotFound    = errors.New("saved session not found")
	ErrSessionExpired     = errors.New("saved session expired")
	ErrInvalidLoanAmount  = errors.New("invalid loan amount")
	ErrInvalidLoanType    = errors.New("invalid loan type")
	ErrInvalidContactInfo = errors.New("invalid contact information")
	ErrTermsNotAgreed     = errors.New("terms and conditions not agreed")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrLeadNotCreated     = errors.New("lead has not been created")
)

// AppError represents a classified application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new classified error
func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeRemote       = "REMOTE_ERROR"
	ErrCodeStorage      = "STORAGE_ERROR"
	ErrCodeSubmission   = "SUBMISSION_IN_FLIGHT"
	ErrCodeSessionState = "SESSION_STATE_ERROR"
	ErrCodeDatabase     = "DATABASE_ERROR"
)

// Wrap common errors with application context

// WrapValidationError marks a field-level validation failure. It is surfaced
// inline next to the offending input and never reaches the state container.
func WrapValidationError(field, message string) *AppError {
	return NewAppError(
		ErrCodeValidation,
		fmt.Sprintf("%s: %s", field, message),
		ErrInvalidContactInfo,
	)
}

// WrapNetworkError marks a transport-level failure or timeout during
// submission. The message is generic; the transport detail stays wrapped.
func WrapNetworkError(err error) *AppError {
	return NewAppError(
		ErrCodeNetwork,
		"Unable to reach the submission service. Please check your connection and try again.",
		err,
	)
}

// WrapRemoteError carries the server-supplied message from a structured
// error response.
func WrapRemoteError(message string, err error) *AppError {
	return NewAppError(ErrCodeRemote, message, err)
}

// WrapStorageError marks a durable-store read/write failure. Callers must
// degrade to "no saved session" rather than crash the wizard.
func WrapStorageError(err error) *AppError {
	return NewAppError(
		ErrCodeStorage,
		"session storage operation failed",
		err,
	)
}

func WrapDatabaseError(err error) *AppError {
	return NewAppError(
		ErrCodeDatabase,
		"database operation failed",
		err,
	)
}

func WrapSubmissionInFlight() *AppError {
	return NewAppError(
		ErrCodeSubmission,
		"A submission is already in progress",
		ErrSubmissionInFlight,
	)
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsNetwork reports whether err is a transport failure or timeout.
func IsNetwork(err error) bool {
	return hasCode(err, ErrCodeNetwork)
}

// IsRemote reports whether err carries a structured remote failure.
func IsRemote(err error) bool {
	return hasCode(err, ErrCodeRemote)
}

// IsStorage reports whether err is a durable-store failure.
func IsStorage(err error) bool {
	return hasCode(err, ErrCodeStorage)
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// UserMessage extracts the user-facing message from a classified error,
// falling back to the raw error text.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
