package ioc

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/junioryono/ioc/internal/graph"
	"github.com/junioryono/ioc/internal/lifecycle"
	"github.com/junioryono/ioc/internal/metadata"
	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/resolver"
)

// Resolver is the resolution side of a Container.
type Resolver interface {
	// Resolve returns an instance of the contract type t.
	Resolve(t reflect.Type) (any, error)

	// BuildUp injects the members of an existing instance, which must be a
	// non-nil pointer.
	BuildUp(instance any) error
}

var _ Resolver = (*Container)(nil)

// Registration describes one contract type known to a Container.
type Registration struct {
	Contract       reflect.Type
	Implementation reflect.Type
	Lifetime       Lifetime

	// Instance is set when the contract is satisfied by a registered
	// instance rather than built.
	Instance bool
}

// Container maps contract types to implementations and builds object
// graphs on demand.
//
// Container is not safe for concurrent use. Callers that share a container
// between goroutines must serialize access to it.
type Container struct {
	id       uuid.UUID
	registry *registry.Registry
	store    *lifecycle.Store
	analyzer *metadata.Analyzer
	resolver *resolver.Resolver
	logger   *slog.Logger

	// instances records registered instances by contract, in registration
	// order.
	instances     map[reflect.Type]reflect.Type
	instanceOrder []reflect.Type

	onResolved func(reflect.Type, any, time.Duration)
	onError    func(reflect.Type, error)
}

// New creates an empty Container.
func New(opts ...Option) *Container {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	c := &Container{
		id:         uuid.New(),
		registry:   registry.New(),
		store:      lifecycle.New(),
		analyzer:   metadata.New(),
		instances:  make(map[reflect.Type]reflect.Type),
		onResolved: o.onResolved,
		onError:    o.onError,
	}

	c.resolver = resolver.New(c.registry, c.store, c.analyzer)
	c.logger = o.logger.With("container", c.id.String())

	return c
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id.String()
}

// RegisterType maps contract to implementation. The implementation's
// construction metadata is computed now; its dependencies are not checked
// until resolution. A later registration of the same contract replaces this
// one and discards any instance cached or registered for it.
//
// RegisterType panics with a *RegistrationError when a type is nil, the
// implementation is not assignable to the contract, or a declared
// constructor or setter is unusable.
func (c *Container) RegisterType(contract, implementation reflect.Type, singleton bool, opts ...TypeOption) *Container {
	const op = "register-type"

	if contract == nil || implementation == nil {
		panic(&RegistrationError{Contract: contract, Operation: op, Cause: ErrTypeNil})
	}

	if !implementation.AssignableTo(contract) {
		panic(&RegistrationError{Contract: contract, Operation: op, Cause: &assignError{from: implementation, to: contract}})
	}

	to := &typeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyType(to)
		}
	}

	d, err := c.analyzer.Describe(implementation, metadata.Candidates(to.constructors...), to.setters)
	if err != nil {
		panic(&RegistrationError{Contract: contract, Operation: op, Cause: err})
	}

	c.registry.Register(&registry.Entry{
		Contract:       contract,
		Implementation: implementation,
		Recipe:         registry.NewRecipe(d),
		Singleton:      singleton,
	})

	if singleton {
		c.store.MarkSingleton(contract)
	} else {
		c.store.Unmark(contract)
	}
	c.forgetInstance(contract)

	c.logger.Debug("registered type",
		"contract", formatType(contract),
		"implementation", formatType(implementation),
		"lifetime", lifetimeOf(singleton).String())

	return c
}

// RegisterInstance makes instance the value returned for contract from now
// on. A nil instance is accepted for contracts that can hold nil. Any type
// registration of contract is kept but no longer used.
//
// RegisterInstance panics with a *RegistrationError when contract is nil or
// instance is not assignable to it.
func (c *Container) RegisterInstance(contract reflect.Type, instance any) *Container {
	const op = "register-instance"

	if contract == nil {
		panic(&RegistrationError{Operation: op, Cause: ErrTypeNil})
	}

	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		if !nillable(contract) {
			panic(&RegistrationError{Contract: contract, Operation: op, Cause: ErrInstanceNil})
		}
		v = reflect.Zero(contract)
	} else if !v.Type().AssignableTo(contract) {
		panic(&RegistrationError{Contract: contract, Operation: op, Cause: &assignError{from: v.Type(), to: contract}})
	}

	c.store.PutDirect(contract, v)

	if _, ok := c.instances[contract]; !ok {
		c.instanceOrder = append(c.instanceOrder, contract)
	}
	c.instances[contract] = v.Type()

	c.logger.Debug("registered instance",
		"contract", formatType(contract),
		"implementation", formatType(v.Type()))

	return c
}

func (c *Container) forgetInstance(contract reflect.Type) {
	if _, ok := c.instances[contract]; !ok {
		return
	}

	delete(c.instances, contract)
	for i, t := range c.instanceOrder {
		if t == contract {
			c.instanceOrder = append(c.instanceOrder[:i], c.instanceOrder[i+1:]...)
			break
		}
	}
}

// Resolve returns an instance of t with all its constructor and member
// dependencies resolved.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, ErrTypeNil
	}

	start := time.Now()
	v, err := c.resolver.Resolve(t)
	if err != nil {
		c.failed(t, err)
		return nil, err
	}

	instance := v.Interface()
	if c.onResolved != nil {
		c.onResolved(t, instance, time.Since(start))
	}

	return instance, nil
}

// BuildUp injects the members of instance, which must be a non-nil
// pointer. Constructors are not called and instance is not cached.
//
// The members are the tagged fields of the instance's type. When that type
// was registered as an implementation, the setters of its most recent
// registration are run too, whichever contract it was registered under.
func (c *Container) BuildUp(instance any) error {
	if err := c.resolver.BuildUp(reflect.ValueOf(instance)); err != nil {
		c.failed(reflect.TypeOf(instance), err)
		return err
	}

	return nil
}

func (c *Container) failed(t reflect.Type, err error) {
	if c.logger.Enabled(context.Background(), slog.LevelDebug) {
		c.logger.Debug("resolution failed",
			"contract", formatType(t),
			"error", err)
	}

	if c.onError != nil {
		c.onError(t, err)
	}
}

// IsRegistered reports whether t has a registration or a registered
// instance.
func (c *Container) IsRegistered(t reflect.Type) bool {
	if c.registry.Contains(t) {
		return true
	}

	_, ok := c.instances[t]
	return ok
}

// Registrations returns every known contract type in registration order.
// Type registrations come first, then contracts only satisfied by an
// instance.
func (c *Container) Registrations() []Registration {
	out := make([]Registration, 0, c.registry.Len()+len(c.instanceOrder))

	for _, e := range c.registry.Entries() {
		r := Registration{
			Contract:       e.Contract,
			Implementation: e.Implementation,
			Lifetime:       lifetimeOf(e.Singleton),
		}
		if impl, ok := c.instances[e.Contract]; ok {
			r.Implementation = impl
			r.Lifetime = Singleton
			r.Instance = true
		}
		out = append(out, r)
	}

	for _, t := range c.instanceOrder {
		if c.registry.Contains(t) {
			continue
		}
		out = append(out, Registration{
			Contract:       t,
			Implementation: c.instances[t],
			Lifetime:       Singleton,
			Instance:       true,
		})
	}

	return out
}

// Validate checks every registration without building anything and
// returns the first missing dependency, dependency cycle or type without a
// constructor, in registration order. Errors are of the same kinds Resolve
// returns.
func (c *Container) Validate() error {
	return c.graph().Validate()
}

// WriteDOT writes the registration graph in Graphviz DOT format.
func (c *Container) WriteDOT(w io.Writer) error {
	return graph.NewVisualizer(c.graph()).WriteDOT(w)
}

// WriteText writes the registration graph as text, grouped by depth.
func (c *Container) WriteText(w io.Writer) error {
	return graph.NewVisualizer(c.graph()).WriteText(w)
}

func (c *Container) graph() *graph.Graph {
	g := graph.New()

	for _, e := range c.registry.Entries() {
		if impl, ok := c.instances[e.Contract]; ok {
			g.AddInstance(e.Contract, impl)
			continue
		}

		recipe := e.Recipe
		deps := make([]reflect.Type, 0, len(recipe.Params)+len(recipe.Members))
		deps = append(deps, recipe.Params...)
		for _, m := range recipe.Members {
			deps = append(deps, m.Type)
		}

		g.AddRegistration(e.Contract, e.Implementation, e.Singleton, deps, recipe.Err)
	}

	for _, t := range c.instanceOrder {
		if !c.registry.Contains(t) {
			g.AddInstance(t, c.instances[t])
		}
	}

	return g
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

type assignError struct {
	from, to reflect.Type
}

func (e *assignError) Error() string {
	return formatType(e.from) + " is not assignable to " + formatType(e.to)
}

func (e *assignError) Unwrap() error {
	return ErrNotAssignable
}
