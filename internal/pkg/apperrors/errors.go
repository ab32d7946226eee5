package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrInvalidFormat   = errors.New("invalid token format")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Infrastructure errors
	ErrUpload      = errors.New("upload failed")
	ErrPersistence = errors.New("persistence failure")
)

// Message errors
var (
	ErrMessageNotFound = &CustomError{Err: ErrResourceNotFound, Message: "Message not found"}
	ErrFileTooLarge    = &CustomError{Err: ErrUpload, Message: "file exceeds the maximum allowed size"}
)

// NewValidationError creates a validation error carrying a caller-facing reason
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewUploadError wraps an object store failure
func NewUploadError(message string, cause error) error {
	return &CustomError{
		Err:     ErrUpload,
		Message: message,
		Cause:   cause,
	}
}

// NewPersistenceError wraps a document store failure
func NewPersistenceError(message string, cause error) error {
	return &CustomError{
		Err:     ErrPersistence,
		Message: message,
		Cause:   cause,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context.
// Err is the stable error kind; Cause is the underlying failure, kept for logs only.
type CustomError struct {
	Err     error
	Cause   error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// PublicMessage returns the message that is safe to show to callers
func (e *CustomError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// PublicMessage extracts a caller-safe message from err, falling back to fallback
func PublicMessage(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.PublicMessage()
	}
	return fallback
}
