// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrAppNotFound indicates an app was not found by the given identifier.
	ErrAppNotFound = errors.New("app not found")

	// ErrCaseNotFound indicates a case was not found by the given identifier.
	ErrCaseNotFound = errors.New("case not found")

	// ErrUserNotFound indicates a user was not found by the given identifier.
	ErrUserNotFound = errors.New("user not found")
)

// AppError wraps app-related errors with additional context.
type AppError struct {
	Op    string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	AppID string
	Err   error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s operation failed for app %s: %v", e.Op, e.AppID, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for app errors.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAppError creates a new app error with context.
func NewAppError(op, appID string, err error) *AppError {
	return &AppError{Op: op, AppID: appID, Err: err}
}

// CaseError wraps case-related errors with additional context.
type CaseError struct {
	Op     string
	CaseID string
	AppID  string
	Err    error
}

func (e *CaseError) Error() string {
	if e.AppID != "" {
		return fmt.Sprintf("%s operation failed for case %s in app %s: %v", e.Op, e.CaseID, e.AppID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for case %s: %v", e.Op, e.CaseID, e.Err)
}

func (e *CaseError) Unwrap() error {
	return e.Err
}

func (e *CaseError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewCaseError(op, caseID string, err error) *CaseError {
	return &CaseError{Op: op, CaseID: caseID, Err: err}
}

// UserError wraps user-related errors with additional context.
type UserError struct {
	Op     string
	UserID string
	Err    error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s operation failed for user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func (e *UserError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewUserError(op, userID string, err error) *UserError {
	return &UserError{Op: op, UserID: userID, Err: err}
}

// IsAppNotFound checks if an error indicates an app was not found.
func IsAppNotFound(err error) bool {
	return errors.Is(err, ErrAppNotFound)
}

// IsCaseNotFound checks if an error indicates a case was not found.
func IsCaseNotFound(err error) bool {
	return errors.Is(err, ErrCaseNotFound)
}

// IsUserNotFound checks if an error indicates a user was not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return IsAppNotFound(err) || IsCaseNotFound(err) || IsUserNotFound(err)
}
