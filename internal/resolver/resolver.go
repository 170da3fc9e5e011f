// Package resolver builds instances from registry recipes, caching
// singletons in a lifecycle store and detecting dependency cycles.
package resolver

import (
	"reflect"

	"github.com/junioryono/ioc/internal/lifecycle"
	"github.com/junioryono/ioc/internal/metadata"
	"github.com/junioryono/ioc/internal/registry"
)

// Context tracks the types under construction during one top-level
// resolution. It is discarded when the call returns.
type Context struct {
	active map[reflect.Type]int
	path   []reflect.Type
}

// NewContext creates an empty resolution context.
func NewContext() *Context {
	return &Context{
		active: make(map[reflect.Type]int),
	}
}

// Active reports whether t is currently under construction.
func (c *Context) Active(t reflect.Type) bool {
	_, ok := c.active[t]
	return ok
}

// Path returns a copy of the types under construction, outermost first.
func (c *Context) Path() []reflect.Type {
	if len(c.path) == 0 {
		return nil
	}

	out := make([]reflect.Type, len(c.path))
	copy(out, c.path)
	return out
}

func (c *Context) enter(t reflect.Type) {
	c.active[t] = len(c.path)
	c.path = append(c.path, t)
}

func (c *Context) leave(t reflect.Type) {
	delete(c.active, t)
	c.path = c.path[:len(c.path)-1]
}

// cycle returns the chain from the first occurrence of t back to t.
func (c *Context) cycle(t reflect.Type) []reflect.Type {
	start, ok := c.active[t]
	if !ok {
		return []reflect.Type{t, t}
	}

	chain := make([]reflect.Type, 0, len(c.path)-start+1)
	chain = append(chain, c.path[start:]...)
	return append(chain, t)
}

// Resolver resolves contract types. It holds no state of its own besides
// its collaborators and is not safe for concurrent use.
type Resolver struct {
	registry *registry.Registry
	store    *lifecycle.Store
	analyzer *metadata.Analyzer
}

// New creates a resolver over the given collaborators.
func New(reg *registry.Registry, store *lifecycle.Store, analyzer *metadata.Analyzer) *Resolver {
	if reg == nil {
		panic("registry cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if analyzer == nil {
		panic("analyzer cannot be nil")
	}

	return &Resolver{
		registry: reg,
		store:    store,
		analyzer: analyzer,
	}
}

// Resolve returns an instance of t in a fresh resolution context.
func (r *Resolver) Resolve(t reflect.Type) (reflect.Value, error) {
	return r.resolve(NewContext(), t)
}

// BuildUp injects the members of an existing instance. The instance must be
// a non-nil pointer; it is never cached. Constructors of its type are
// neither called nor inspected.
func (r *Resolver) BuildUp(instance reflect.Value) error {
	if !instance.IsValid() {
		return &InvalidTargetError{Reason: "instance is nil"}
	}

	t := instance.Type()
	if t.Kind() != reflect.Pointer {
		return &InvalidTargetError{Type: t, Reason: "instance must be a pointer"}
	}
	if instance.IsNil() {
		return &InvalidTargetError{Type: t, Reason: "instance is a nil pointer"}
	}

	return r.inject(NewContext(), instance, r.analyzer.Members(t))
}

func (r *Resolver) resolve(ctx *Context, t reflect.Type) (reflect.Value, error) {
	if v, ok := r.store.TryGet(t); ok {
		return v, nil
	}

	entry, ok := r.registry.Lookup(t)
	if !ok {
		return reflect.Value{}, &NotRegisteredError{Type: t, Path: ctx.Path()}
	}

	if ctx.Active(t) {
		return reflect.Value{}, &CyclicDependencyError{Type: t, Chain: ctx.cycle(t)}
	}

	singleton := entry.Singleton && r.store.Has(t)

	// A singleton slot already building outside this context means the type
	// is being resolved again from within its own constructor.
	if singleton && !r.store.Begin(t) {
		return reflect.Value{}, &CyclicDependencyError{Type: t, Chain: append(ctx.Path(), t)}
	}

	// Deferred so that a panicking constructor or setter leaves neither t
	// active nor its slot building. Abandon is a no-op once the slot is
	// filled.
	ctx.enter(t)
	defer func() {
		ctx.leave(t)
		if singleton {
			r.store.Abandon(t)
		}
	}()

	v, err := r.build(ctx, entry)
	if err != nil {
		return reflect.Value{}, err
	}

	if singleton {
		r.store.Put(t, v)
	}

	return v, nil
}

func (r *Resolver) build(ctx *Context, entry *registry.Entry) (reflect.Value, error) {
	recipe := entry.Recipe
	if recipe.Err != nil {
		return reflect.Value{}, &ConstructorError{
			Type:           entry.Contract,
			Implementation: entry.Implementation,
			Cause:          recipe.Err,
		}
	}

	args := make([]reflect.Value, len(recipe.Params))
	for i, p := range recipe.Params {
		arg, err := r.resolve(ctx, p)
		if err != nil {
			return reflect.Value{}, err
		}
		args[i] = arg
	}

	v, err := recipe.Factory(args)
	if err != nil {
		return reflect.Value{}, &ConstructorError{
			Type:           entry.Contract,
			Implementation: entry.Implementation,
			Cause:          err,
		}
	}

	if err := r.inject(ctx, v, recipe.Members); err != nil {
		return reflect.Value{}, err
	}

	return v, nil
}

func (r *Resolver) inject(ctx *Context, target reflect.Value, members []metadata.Member) error {
	if len(members) == 0 {
		return nil
	}

	if target.Kind() == reflect.Pointer && target.IsNil() {
		return &InvalidTargetError{Type: target.Type(), Reason: "constructor returned a nil pointer"}
	}

	for _, m := range members {
		v, err := r.resolve(ctx, m.Type)
		if err != nil {
			return err
		}
		m.Set(target, v)
	}

	return nil
}
