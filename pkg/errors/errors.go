package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues. Validation
// failures are fatal and surface before any probing happens.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ActionError represents a failure while applying a reconciliation action.
// Completed lists the actions that already succeeded so the caller can see
// what a resumed reconciliation will skip.
type ActionError struct {
	Action    string
	Completed []string
	Err       error
}

// NewActionError constructs an ActionError for the named action.
func NewActionError(action string, completed []string, err error) error {
	return &ActionError{Action: action, Completed: completed, Err: err}
}

func (e *ActionError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Completed) > 0 {
		return fmt.Sprintf("action %s failed: %v (already completed: %s)", e.Action, e.Err, strings.Join(e.Completed, ", "))
	}
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
}

// Unwrap exposes the root error.
func (e *ActionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EnvironmentNotReadyError indicates a command was requested against an
// environment that still has pending reconciliation actions.
type EnvironmentNotReadyError struct {
	Pending []string
}

// NewEnvironmentNotReadyError constructs an EnvironmentNotReadyError from the
// pending action descriptions.
func NewEnvironmentNotReadyError(pending []string) error {
	return &EnvironmentNotReadyError{Pending: pending}
}

func (e *EnvironmentNotReadyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("environment is not converged (pending: %s); run envpod up first or pass --provision", strings.Join(e.Pending, "; "))
}

// TargetNotFoundError indicates a run target absent from the configuration.
type TargetNotFoundError struct {
	Target    string
	Available []string
}

// NewTargetNotFoundError constructs a TargetNotFoundError.
func NewTargetNotFoundError(target string, available []string) error {
	return &TargetNotFoundError{Target: target, Available: available}
}

func (e *TargetNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Available) > 0 {
		return fmt.Sprintf("run target %q not found (available: %s)", e.Target, strings.Join(e.Available, ", "))
	}
	return fmt.Sprintf("run target %q not found", e.Target)
}

// LockError indicates another reconciliation holds the project lock. It is
// contention, not corruption: the caller should wait and retry.
type LockError struct {
	Path string
	Err  error
}

// NewLockError constructs a LockError for the given lock path.
func NewLockError(path string, err error) error {
	return &LockError{Path: path, Err: err}
}

func (e *LockError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("another reconciliation is in progress (lock %s); retry once it finishes", e.Path)
}

// Unwrap exposes the underlying error.
func (e *LockError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
