package models

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error categories. Every typed error below unwraps to one of these so
// callers can classify with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrReference           = errors.New("unknown reference")
	ErrPermission          = errors.New("permission denied")
	ErrDeadEnd             = errors.New("step has no outgoing transition")
	ErrAmbiguousTransition = errors.New("ambiguous transition")
	ErrCaseClosed          = errors.New("case is closed")
)

// ValidationError reports input that breaks a document or form rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReferenceError reports an id that does not resolve to a node, edge or field.
type ReferenceError struct {
	Kind string
	ID   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return ErrReference
}

// PermissionError is returned when a user acts on a step assigned to somebody else.
type PermissionError struct {
	StepID     string
	UserID     string
	AssigneeID string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %q cannot complete step %q assigned to %q", e.UserID, e.StepID, e.AssigneeID)
}

func (e *PermissionError) Unwrap() error {
	return ErrPermission
}

// DeadEndError is returned when a non End step has no outgoing edge.
type DeadEndError struct {
	StepID string
}

func (e *DeadEndError) Error() string {
	return fmt.Sprintf("step %q has no outgoing transition", e.StepID)
}

func (e *DeadEndError) Unwrap() error {
	return ErrDeadEnd
}

// AmbiguousTransitionError is returned in strict mode when a branching step is
// completed without a valid choice.
type AmbiguousTransitionError struct {
	StepID  string
	Targets []string
}

func (e *AmbiguousTransitionError) Error() string {
	return fmt.Sprintf("step %q has %d transitions (%s), a choice is required",
		e.StepID, len(e.Targets), strings.Join(e.Targets, ", "))
}

func (e *AmbiguousTransitionError) Unwrap() error {
	return ErrAmbiguousTransition
}

// ClosedError is returned when a case that reached an End step is asked to move on.
type ClosedError struct {
	CaseID string
	StepID string
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("case %q is closed at step %q", e.CaseID, e.StepID)
}

func (e *ClosedError) Unwrap() error {
	return ErrCaseClosed
}

// IsValidationError reports whether err is a document or form validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsReferenceError reports whether err is an unresolved id.
func IsReferenceError(err error) bool {
	return errors.Is(err, ErrReference)
}

// IsPermissionError reports whether err is an assignee check failure.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrPermission)
}

// IsTransitionError reports whether err blocks a step transition.
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrDeadEnd) ||
		errors.Is(err, ErrAmbiguousTransition) ||
		errors.Is(err, ErrCaseClosed)
}
