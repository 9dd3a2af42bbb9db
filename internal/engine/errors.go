package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while evaluating rules.
//
// Runtime errors include:
//   - Name mismatch: two effects with different names were ordered
//   - Unknown content: a caller asked for content the archive does not hold
//   - State access: the persisted-state collaborator failed
//
// Missing content referenced from inside an expression is not an error; it
// degrades to a no-op or default value.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeEffectNameMismatch indicates two effects of different names were compared.
	ErrCodeEffectNameMismatch RuntimeErrorCode = "EFFECT_NAME_MISMATCH"

	// ErrCodeUnknownContent indicates a lookup by the caller found nothing.
	ErrCodeUnknownContent RuntimeErrorCode = "UNKNOWN_CONTENT"

	// ErrCodeStateAccess indicates the game state repository failed.
	ErrCodeStateAccess RuntimeErrorCode = "STATE_ACCESS"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsNameMismatch returns true if the error is an effect name mismatch.
// Uses errors.As to handle wrapped errors.
func IsNameMismatch(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeEffectNameMismatch
	}
	return false
}

// IsStateError returns true if the error came from the game state repository.
func IsStateError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeStateAccess
	}
	return false
}

// IsUnknownContent returns true if the error reports a missing archive entry.
func IsUnknownContent(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownContent
	}
	return false
}

// NewNameMismatchError creates a RuntimeError for comparing unrelated effects.
func NewNameMismatchError(a, b string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeEffectNameMismatch,
		Message: "cannot order effects with different names",
		Details: map[string]string{
			"left":  a,
			"right": b,
		},
	}
}

// NewUnknownContentError creates a RuntimeError for a missing archive entry.
func NewUnknownContentError(kind, key string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownContent,
		Message: fmt.Sprintf("unknown %s %q", kind, key),
		Details: map[string]string{
			"kind": kind,
			"key":  key,
		},
	}
}

// NewStateError wraps a repository failure for the given operation and key.
func NewStateError(op, key string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStateAccess,
		Message: fmt.Sprintf("%s %q", op, key),
		Details: map[string]string{
			"op":  op,
			"key": key,
		},
		Err: err,
	}
}
