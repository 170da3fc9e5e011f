package ioc

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/junioryono/ioc/internal/metadata"
	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/resolver"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// Match these with errors.Is; the typed errors below wrap them.

var (
	// Resolution errors.
	ErrNotRegistered    = resolver.ErrNotRegistered
	ErrCyclicDependency = resolver.ErrCyclicDependency
	ErrNoConstructor    = registry.ErrNoConstructor
	ErrInvalidTarget    = resolver.ErrInvalidTarget

	// Registration errors.
	ErrTypeNil       = errors.New("type cannot be nil")
	ErrNotAssignable = errors.New("type is not assignable to contract")
	ErrInstanceNil   = errors.New("instance cannot be nil")
)

var (
	_ error = (*RegistrationError)(nil)
	_ error = (*LifetimeError)(nil)
)

// ========================================
// Typed Errors
// ========================================

// NotRegisteredError indicates a contract type with neither a registration
// nor a registered instance. It matches ErrNotRegistered.
type NotRegisteredError = resolver.NotRegisteredError

// CyclicDependencyError indicates a type that depends on itself, directly
// or transitively. It matches ErrCyclicDependency.
type CyclicDependencyError = resolver.CyclicDependencyError

// ConstructorError indicates that the selected constructor returned an
// error, or that the implementation type has no constructor.
type ConstructorError = resolver.ConstructorError

// InvalidTargetError indicates a BuildUp target that is not a non-nil
// pointer. It matches ErrInvalidTarget.
type InvalidTargetError = resolver.InvalidTargetError

// InvalidConstructorError indicates a declared constructor with an
// unusable signature.
type InvalidConstructorError = metadata.InvalidConstructorError

// InvalidSetterError indicates a declared setter with an unusable
// signature.
type InvalidSetterError = metadata.InvalidSetterError

// RegistrationError is the panic value of a misused registration call.
type RegistrationError struct {
	Contract  reflect.Type
	Operation string // "register-type", "register-instance"
	Cause     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, formatType(e.Contract), e.Cause)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e *LifetimeError) Error() string {
	return fmt.Sprintf("invalid lifetime: %v", e.Value)
}

// IsNotRegistered reports whether err is or wraps a missing registration.
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsCyclicDependency reports whether err is or wraps a dependency cycle.
func IsCyclicDependency(err error) bool {
	return errors.Is(err, ErrCyclicDependency)
}

// formatType formats a reflect.Type for error and log messages.
func formatType(t reflect.Type) string {
	return resolver.FormatType(t)
}
