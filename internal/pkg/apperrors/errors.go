package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// User and person errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPersonNotFound     = errors.New("person not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrNotAStudent        = errors.New("person is not a student")
	ErrNotAProfessor      = errors.New("person is not a professor")
)

// Student and professor errors
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrProfessorNotFound = errors.New("professor not found")
)

// Enrollment errors
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrCourseFull      = errors.New("no available seats in course")
	ErrAlreadyEnrolled = errors.New("student already assigned to course")
	ErrNotEnrolled     = errors.New("student not enrolled in course")
)

// Token format errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with an underlying sentinel error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewValidationError creates a validation failure with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewNotFoundError creates a not-found failure with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}
