package ioc

import (
	"fmt"
	"reflect"
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterType is a generic helper that maps contract C to implementation I.
func RegisterType[C, I any](c *Container, singleton bool, opts ...TypeOption) *Container {
	return c.RegisterType(typeOf[C](), typeOf[I](), singleton, opts...)
}

// RegisterConcrete is a generic helper that registers T as its own
// implementation.
func RegisterConcrete[T any](c *Container, singleton bool, opts ...TypeOption) *Container {
	t := typeOf[T]()
	return c.RegisterType(t, t, singleton, opts...)
}

// RegisterInstance is a generic helper that registers instance for
// contract T.
func RegisterInstance[T any](c *Container, instance T) *Container {
	return c.RegisterInstance(typeOf[T](), instance)
}

// Resolve is a generic helper function that resolves a contract as type T.
func Resolve[T any](r Resolver) (T, error) {
	var zero T

	instance, err := r.Resolve(typeOf[T]())
	if err != nil {
		return zero, err
	}

	// A nil instance registered for an interface contract.
	if instance == nil {
		return zero, nil
	}

	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("type assertion failed: expected %s, got %T", formatType(typeOf[T]()), instance)
	}

	return result, nil
}

// MustResolve resolves a contract and panics on error.
func MustResolve[T any](r Resolver) T {
	result, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", formatType(typeOf[T]()), err))
	}
	return result
}

// BuildUp is a generic helper that injects the members of target and
// returns it.
func BuildUp[T any](r Resolver, target T) (T, error) {
	if err := r.BuildUp(target); err != nil {
		return target, err
	}
	return target, nil
}

// IsRegistered reports whether contract T has a registration or a
// registered instance.
func IsRegistered[T any](c *Container) bool {
	return c.IsRegistered(typeOf[T]())
}
