package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeParse       = "PARSE_ERROR"
	ErrCodeContract    = "CONTRACT_VIOLATION"
	ErrCodeEmptyDomain = "EMPTY_DOMAIN"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// AppError represents an application error with an error code and HTTP status.
type AppError struct {
	Code    string // Error code (e.g., "PARSE_ERROR", "CONTRACT_VIOLATION")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewParseError creates a PARSE_ERROR for malformed input (PGN records,
// clock tokens, file formats). Parse errors abort ingestion of the
// offending record or file and are never retried.
func NewParseError(message string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeParse,
		Message: fmt.Sprintf(message, args...),
		Status:  422,
	}
}

// NewContractError creates a CONTRACT_VIOLATION error for misuse of an API:
// invalid filter values, removing a game that is not present, adding a
// variation to a variation node.
func NewContractError(message string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeContract,
		Message: fmt.Sprintf(message, args...),
		Status:  400,
	}
}

// NewEmptyDomainError creates an EMPTY_DOMAIN error for queries executed
// against an empty working set. Distinct from a query that ran and simply
// matched nothing.
func NewEmptyDomainError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyDomain,
		Message: message,
		Status:  409,
	}
}

// NewNotFoundError creates a NOT_FOUND error
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates an INTERNAL_ERROR wrapping err.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal error",
		Status:  500,
		Err:     err,
	}
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsParse reports whether err is a PARSE_ERROR.
func IsParse(err error) bool { return hasCode(err, ErrCodeParse) }

// IsContract reports whether err is a CONTRACT_VIOLATION.
func IsContract(err error) bool { return hasCode(err, ErrCodeContract) }

// IsEmptyDomain reports whether err is an EMPTY_DOMAIN error.
func IsEmptyDomain(err error) bool { return hasCode(err, ErrCodeEmptyDomain) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }
