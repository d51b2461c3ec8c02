package inspector

import (
	"errors"
	"fmt"
)

// Error types.
var (
	ErrConstructorNotFound = errors.New("no suitable constructor located")
	ErrInvocationFailed    = errors.New("constructor invocation failed")
	ErrIncompatibleResult  = errors.New("instance is not of the requested type")
)

// InvocationError is returned when a matching constructor was located but
// creating the instance failed. It matches ErrInvocationFailed with errors.Is
// and unwraps to the underlying cause.
type InvocationError struct {
	Type        string
	Constructor string
	Err         error
}

// Error returns a formatted error message naming the type and constructor.
func (e *InvocationError) Error() string {
	return fmt.Sprintf("%v: %s: %s: %v", ErrInvocationFailed, e.Type, e.Constructor, e.Err)
}

// Is checks if the target error is ErrInvocationFailed.
func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocationFailed
}

// Unwrap returns the cause of the failure.
func (e *InvocationError) Unwrap() error {
	return e.Err
}
