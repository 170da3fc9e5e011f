package testutil

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertResolvable checks if a contract can be resolved
func AssertResolvable[T any](t *testing.T, r ioc.Resolver) T {
	t.Helper()
	instance, err := ioc.Resolve[T](r)
	require.NoError(t, err, "failed to resolve %T", *new(T))
	require.NotNil(t, instance, "resolved instance is nil")
	return instance
}

// AssertNotRegistered checks if a resolution fails with a not registered error
func AssertNotRegistered[T any](t *testing.T, r ioc.Resolver) *ioc.NotRegisteredError {
	t.Helper()
	_, err := ioc.Resolve[T](r)
	require.Error(t, err)
	assert.True(t, ioc.IsNotRegistered(err), "expected not registered error, got: %v", err)
	return AssertErrorType[*ioc.NotRegisteredError](t, err)
}

// AssertCyclicDependency checks if a resolution fails with a cycle
func AssertCyclicDependency[T any](t *testing.T, r ioc.Resolver) *ioc.CyclicDependencyError {
	t.Helper()
	_, err := ioc.Resolve[T](r)
	require.Error(t, err)
	assert.True(t, ioc.IsCyclicDependency(err), "expected cyclic dependency error, got: %v", err)
	return AssertErrorType[*ioc.CyclicDependencyError](t, err)
}

// AssertSingleton verifies that two resolutions return the same instance
func AssertSingleton[T any](t *testing.T, r ioc.Resolver) T {
	t.Helper()
	first := AssertResolvable[T](t, r)
	second := AssertResolvable[T](t, r)
	assert.Same(t, any(first), any(second), "expected the same instance of %T", first)
	return first
}

// AssertTransient verifies that two resolutions return different instances
func AssertTransient[T any](t *testing.T, r ioc.Resolver) (T, T) {
	t.Helper()
	first := AssertResolvable[T](t, r)
	second := AssertResolvable[T](t, r)
	assert.NotSame(t, any(first), any(second), "expected different instances of %T", first)
	return first, second
}

// AssertRegistrationPanics checks that f panics with a registration error
// wrapping expected
func AssertRegistrationPanics(t *testing.T, expected error, f func(), msgAndArgs ...any) *ioc.RegistrationError {
	t.Helper()

	var regErr *ioc.RegistrationError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				assert.Fail(t, "function did not panic", msgAndArgs...)
				return
			}

			err, ok := r.(error)
			if !ok {
				assert.Fail(t, "panic value is not an error", "got %v", r)
				return
			}

			require.ErrorAs(t, err, &regErr, msgAndArgs...)
			if expected != nil {
				assert.ErrorIs(t, err, expected, msgAndArgs...)
			}
		}()
		f()
	}()

	return regErr
}

// AssertErrorType checks if an error is of a specific type
func AssertErrorType[T error](t *testing.T, err error, msgAndArgs ...any) T {
	t.Helper()
	var target T
	assert.ErrorAs(t, err, &target, msgAndArgs...)
	return target
}
