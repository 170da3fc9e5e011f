package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotRegistered is matched by every NotRegisteredError.
	ErrNotRegistered = errors.New("type not registered")

	// ErrCyclicDependency is matched by every CyclicDependencyError.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrInvalidTarget is matched by every InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid build-up target")
)

var (
	_ error = (*NotRegisteredError)(nil)
	_ error = (*CyclicDependencyError)(nil)
	_ error = (*ConstructorError)(nil)
	_ error = (*InvalidTargetError)(nil)
)

// NotRegisteredError reports a contract type with neither a registration nor
// a registered instance.
type NotRegisteredError struct {
	// Type is the missing contract type.
	Type reflect.Type

	// Path lists the types under construction when Type was requested,
	// outermost first. Empty for a top-level request.
	Path []reflect.Type
}

func (e *NotRegisteredError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("type not registered: %s", FormatType(e.Type)))

	if len(e.Path) > 0 {
		b.WriteString(fmt.Sprintf(" (required by %s)", FormatType(e.Path[len(e.Path)-1])))
		b.WriteString("\nResolution path: ")
		writeChain(&b, append(e.Path[:len(e.Path):len(e.Path)], e.Type))
	}

	return b.String()
}

func (e *NotRegisteredError) Is(target error) bool {
	return target == ErrNotRegistered
}

// CyclicDependencyError reports a type requested again while it was still
// under construction in the same resolution.
type CyclicDependencyError struct {
	// Type is the type that was re-entered.
	Type reflect.Type

	// Chain is the dependency cycle, starting and ending with Type.
	Chain []reflect.Type
}

func (e *CyclicDependencyError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("cyclic dependency detected for %s", FormatType(e.Type)))

	if len(e.Chain) > 0 {
		b.WriteString("\nDependency chain: ")
		writeChain(&b, e.Chain)
	}

	return b.String()
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// ConstructorError reports a failure of the constructor selected for a type,
// or the lack of one.
type ConstructorError struct {
	Type           reflect.Type
	Implementation reflect.Type
	Cause          error
}

func (e *ConstructorError) Error() string {
	if e.Implementation != nil && e.Implementation != e.Type {
		return fmt.Sprintf("constructor for %s (%s) failed: %v",
			FormatType(e.Type), FormatType(e.Implementation), e.Cause)
	}

	return fmt.Sprintf("constructor for %s failed: %v", FormatType(e.Type), e.Cause)
}

func (e *ConstructorError) Unwrap() error {
	return e.Cause
}

// InvalidTargetError reports a value that members cannot be injected into.
type InvalidTargetError struct {
	Type   reflect.Type
	Reason string
	Cause  error
}

func (e *InvalidTargetError) Error() string {
	msg := fmt.Sprintf("cannot inject into %s: %s", FormatType(e.Type), e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *InvalidTargetError) Is(target error) bool {
	return target == ErrInvalidTarget
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Cause
}

func writeChain(b *strings.Builder, chain []reflect.Type) {
	for i, t := range chain {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(FormatType(t))
	}
}

// FormatType formats a reflect.Type for error messages.
func FormatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
