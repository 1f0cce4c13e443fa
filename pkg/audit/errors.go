package audit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageUnavailable indicates the configured log folder is missing or unreadable
var ErrStorageUnavailable = errors.New("audit log storage unavailable")

// ErrInvalidPageSize indicates a non-positive page size was requested.
// This is programmer-facing misuse, not a user-facing validation failure.
var ErrInvalidPageSize = errors.New("page size must be positive")

// Violation describes a single invalid query parameter
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every invalid parameter found in a raw query.
// Violations are collected rather than failing on the first one.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return "invalid search criteria: " + strings.Join(msgs, "; ")
}

// Add records a violation
func (e *ValidationError) Add(field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasViolations reports whether any violation was recorded
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// AuthorizationError indicates the caller holds no role that permits querying
// the audit trail. It is checked before any criteria evaluation or file I/O.
type AuthorizationError struct {
	Username string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not authorized to query the audit trail", e.Username)
}

// IsAuthorizationError checks if an error is an authorization error
func IsAuthorizationError(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
