// Package services implements caseflow's application services over persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/caseflow/pkg/models"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest  = errors.New("invalid request")
	ErrDuplicateEmail  = errors.New("a user with this email already exists")
	ErrUnknownAssignee = errors.New("unknown assignee")

	// Permission Errors (403 Forbidden).
	ErrCannotDeleteSelf = errors.New("cannot delete yourself")
	ErrUnknownActor     = errors.New("acting user is not a member of the workspace")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrUnknownAssignee) ||
		models.IsValidationError(err)
}

// IsPermissionError checks if an error should return HTTP 403.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrCannotDeleteSelf) ||
		errors.Is(err, ErrUnknownActor) ||
		models.IsPermissionError(err)
}

// IsReferenceError checks if an error names a missing node, field or step (HTTP 422).
func IsReferenceError(err error) bool {
	return models.IsReferenceError(err)
}

// IsConflictError checks if an error is a transition conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return models.IsTransitionError(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
