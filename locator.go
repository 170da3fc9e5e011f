package ioc

import "sync"

// Locator gives shared access to one Container created on first use.
// Pass it explicitly to the code that needs it; it is safe for concurrent
// use, the Container it returns is not.
type Locator struct {
	once      sync.Once
	provider  func() *Container
	container *Container
}

// NewLocator creates a Locator whose container is produced by provider the
// first time it is requested. A provider returning nil yields an empty
// container.
func NewLocator(provider func() *Container) *Locator {
	if provider == nil {
		panic("container provider cannot be nil")
	}

	return &Locator{provider: provider}
}

// Container returns the located container, creating it on first call.
func (l *Locator) Container() *Container {
	l.once.Do(func() {
		l.container = l.provider()
		if l.container == nil {
			l.container = New()
		}
	})

	return l.container
}

// Locate returns the located container itself when it is a T, such as
// *Container or Resolver, and resolves T from it otherwise.
func Locate[T any](l *Locator) (T, error) {
	c := l.Container()
	if typeOf[T]() != typeOf[any]() {
		if v, ok := any(c).(T); ok {
			return v, nil
		}
	}

	return Resolve[T](c)
}
