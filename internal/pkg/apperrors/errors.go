package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authentication required")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	ErrTooManyRequests = errors.New("too many requests")
)

// Domain not-found errors. Each wraps ErrResourceNotFound so handlers can
// map them with a single errors.Is check.
var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrResourceNotFound)
	ErrCourseNotFound       = fmt.Errorf("course %w", ErrResourceNotFound)
	ErrSummaryNotFound      = fmt.Errorf("summary %w", ErrResourceNotFound)
	ErrForumPostNotFound    = fmt.Errorf("forum post %w", ErrResourceNotFound)
	ErrToolNotFound         = fmt.Errorf("tool %w", ErrResourceNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrResourceNotFound)
	ErrHelpRequestNotFound  = fmt.Errorf("help request %w", ErrResourceNotFound)
	ErrReportNotFound       = fmt.Errorf("report %w", ErrResourceNotFound)
	ErrFavoriteNotFound     = fmt.Errorf("favorite %w", ErrResourceNotFound)
)

// Conflicts
var (
	ErrEmailAlreadyExists      = fmt.Errorf("email %w", ErrResourceAlreadyExists)
	ErrCourseCodeAlreadyExists = fmt.Errorf("course code %w", ErrResourceAlreadyExists)
	ErrAlreadyFavorite         = errors.New("already in favorites")
	ErrAlreadySubscribed       = errors.New("already subscribed")
)

// Email verification and password reset
var (
	ErrInvalidEmailToken         = errors.New("invalid or expired email verification token")
	ErrEmailAlreadyVerified      = errors.New("email already verified")
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
)

// Upload errors
var (
	ErrFileRequired    = errors.New("file is required")
	ErrFileTooLarge    = errors.New("file too large")
	ErrFileTypeInvalid = errors.New("file type not allowed")
	ErrTooManyFiles    = errors.New("too many files")
)

// NewResourceNotFoundError creates a not-found error carrying a user-facing message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a conflict error carrying a user-facing message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a permission error carrying a user-facing message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError creates a bad-request error carrying a user-facing message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewValidationError creates a validation error for one field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]any{"field": field},
	}
}

// Is returns whether err matches target or any of errList
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

// CustomError is an application error with a user-facing message
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]any
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]any) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// UserMessage returns the message meant for API clients, if any
func UserMessage(err error) (string, bool) {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message, true
	}
	return "", false
}
