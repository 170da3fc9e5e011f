package registry

import (
	"errors"
	"reflect"

	"github.com/junioryono/ioc/internal/metadata"
)

// ErrNoConstructor is the deferred failure of a recipe whose implementation
// type has no constructor to build it with.
var ErrNoConstructor = errors.New("no constructor available")

// Entry maps a contract type to the recipe that builds it.
type Entry struct {
	// Contract is the type callers resolve.
	Contract reflect.Type

	// Implementation is the concrete type the recipe builds.
	Implementation reflect.Type

	// Recipe is computed once at registration.
	Recipe *Recipe

	// Singleton selects the singleton lifetime; transient otherwise.
	Singleton bool
}

// Recipe is the precomputed construction plan of an implementation type.
type Recipe struct {
	// Params are the contract types of the selected constructor's
	// parameters, in call order.
	Params []reflect.Type

	// Members are the injectable members applied after construction.
	Members []metadata.Member

	// Err is reported instead of calling Factory; set when the
	// implementation has no constructor.
	Err error

	descriptor *metadata.Descriptor
	factory    func(args []reflect.Value) (reflect.Value, error)
}

// NewRecipe builds the recipe of the descriptor's selected constructor.
func NewRecipe(d *metadata.Descriptor) *Recipe {
	r := &Recipe{
		Params:     d.Params(),
		Members:    d.Members,
		descriptor: d,
	}

	if d.Selected == nil {
		r.Err = ErrNoConstructor
		return r
	}

	ctor := d.Selected
	r.factory = func(args []reflect.Value) (reflect.Value, error) {
		v, err := ctor.Call(args)
		if err != nil {
			return reflect.Value{}, err
		}

		// Struct values must be addressable for member injection.
		if v.Kind() == reflect.Struct && !v.CanAddr() {
			addressable := reflect.New(v.Type()).Elem()
			addressable.Set(v)
			v = addressable
		}

		return v, nil
	}

	return r
}

// Factory invokes the selected constructor with resolved arguments.
func (r *Recipe) Factory(args []reflect.Value) (reflect.Value, error) {
	if r.Err != nil {
		return reflect.Value{}, r.Err
	}

	return r.factory(args)
}

// Descriptor returns the metadata the recipe was built from.
func (r *Recipe) Descriptor() *metadata.Descriptor {
	return r.descriptor
}

// Registry holds the active entry per contract type. It owns no instances
// and is not safe for concurrent use.
type Registry struct {
	entries map[reflect.Type]*Entry
	order   []reflect.Type
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]*Entry),
	}
}

// Register stores e, replacing the entry of the same contract. The first
// registration position of a contract is kept.
func (r *Registry) Register(e *Entry) {
	if _, exists := r.entries[e.Contract]; !exists {
		r.order = append(r.order, e.Contract)
	}

	r.entries[e.Contract] = e
}

// Lookup returns the entry for contract.
func (r *Registry) Lookup(contract reflect.Type) (*Entry, bool) {
	e, ok := r.entries[contract]
	return e, ok
}

// Contains reports whether contract has an entry.
func (r *Registry) Contains(contract reflect.Type) bool {
	_, ok := r.entries[contract]
	return ok
}

// Entries returns all entries in first-registration order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.entries[t])
	}

	return out
}

// Len returns the number of registered contracts.
func (r *Registry) Len() int {
	return len(r.entries)
}
