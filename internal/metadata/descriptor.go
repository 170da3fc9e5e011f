package metadata

import (
	"fmt"
	"reflect"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Descriptor is the precomputed construction metadata of one implementation
// type: its declared constructors, the one selected for injection, and the
// members that receive injected values.
type Descriptor struct {
	// Type is the implementation type this descriptor was computed for.
	Type reflect.Type

	// Constructors holds every declared constructor in declaration order.
	Constructors []*Constructor

	// Selected is the constructor used for injection, nil when the type
	// has no constructors at all.
	Selected *Constructor

	// Members are the injectable members in declaration order.
	Members []Member
}

// Params returns the ordered parameter types of the selected constructor.
func (d *Descriptor) Params() []reflect.Type {
	if d.Selected == nil {
		return nil
	}

	return d.Selected.Params
}

// Constructor describes a single way to build an implementation type.
type Constructor struct {
	// Func is the constructor function. Invalid for the implicit
	// zero-value constructor.
	Func reflect.Value

	// Params are the parameter types, in call order.
	Params []reflect.Type

	// Index is the position in declaration order.
	Index int

	// Preferred reports whether the constructor was marked as the
	// injection point.
	Preferred bool

	// Implicit is set for the zero-value constructor of struct types that
	// declare none.
	Implicit bool

	hasError bool
	build    func(args []reflect.Value) (reflect.Value, error)
}

// Call invokes the constructor with already resolved arguments.
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	return c.build(args)
}

// String returns the constructor signature.
func (c *Constructor) String() string {
	if c.Implicit {
		return "implicit zero-value constructor"
	}

	return fmt.Sprintf("%v", c.Func.Type())
}

// Member is one injectable member of an implementation type.
type Member struct {
	// Name is the field name, or the setter function name.
	Name string

	// Type is the contract type resolved for the member.
	Type reflect.Type

	// Set assigns value to the member of target.
	Set func(target, value reflect.Value)
}

// Candidate is a declared constructor before validation.
type Candidate struct {
	Func      any
	Preferred bool
}

type preferred struct {
	fn any
}

// Prefer marks fn as the preferred injection constructor.
func Prefer(fn any) any {
	return preferred{fn: fn}
}

// Candidates converts a declaration list, where entries are either bare
// constructor functions or values returned by [Prefer], into candidates.
func Candidates(fns ...any) []Candidate {
	out := make([]Candidate, 0, len(fns))
	for _, fn := range fns {
		if p, ok := fn.(preferred); ok {
			out = append(out, Candidate{Func: p.fn, Preferred: true})
			continue
		}

		out = append(out, Candidate{Func: fn})
	}

	return out
}

// Select picks the injection constructor: the first one marked preferred,
// otherwise the first one with the greatest parameter count. It returns nil
// for an empty list.
func Select(ctors []*Constructor) *Constructor {
	var selected *Constructor
	for _, c := range ctors {
		if c.Preferred {
			return c
		}

		if selected == nil || len(c.Params) > len(selected.Params) {
			selected = c
		}
	}

	return selected
}
