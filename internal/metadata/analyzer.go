package metadata

import (
	"fmt"
	"reflect"
	"runtime"
)

// TagName is the struct tag marking a field as an injection target.
// Any value other than "-" marks the field.
const TagName = "inject"

// Declarer is implemented by types that declare their own constructors.
// Entries are constructor functions or values returned by [Prefer].
type Declarer interface {
	Constructors() []any
}

var declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()

// Analyzer computes descriptors and caches them per implementation type.
// It is not safe for concurrent use.
type Analyzer struct {
	cache   map[reflect.Type]*Descriptor
	members map[reflect.Type][]Member
}

// New creates an empty Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache:   make(map[reflect.Type]*Descriptor),
		members: make(map[reflect.Type][]Member),
	}
}

// Describe computes the descriptor for t from explicit constructor
// candidates and setter functions and caches it, replacing any earlier
// descriptor for t. When candidates is empty the constructors declared by t
// itself through [Declarer] are used.
func (a *Analyzer) Describe(t reflect.Type, candidates []Candidate, setters []any) (*Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("implementation type cannot be nil")
	}

	if len(candidates) == 0 {
		candidates = declaredCandidates(t)
	}

	ctors, err := buildConstructors(t, candidates)
	if err != nil {
		return nil, err
	}

	members := fieldMembers(t)
	for _, s := range setters {
		m, err := setterMember(t, s)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	d := &Descriptor{
		Type:         t,
		Constructors: ctors,
		Selected:     Select(ctors),
		Members:      members,
	}

	a.cache[t] = d
	return d, nil
}

// Lookup returns the cached descriptor for t, computing a default one when t
// was never described.
func (a *Analyzer) Lookup(t reflect.Type) (*Descriptor, error) {
	if d, ok := a.cache[t]; ok {
		return d, nil
	}

	return a.Describe(t, nil, nil)
}

// Members returns the injectable members of t without looking at its
// constructors. A described t yields the members of its latest descriptor,
// setters included; otherwise only tagged fields are returned.
func (a *Analyzer) Members(t reflect.Type) []Member {
	if d, ok := a.cache[t]; ok {
		return d.Members
	}

	if m, ok := a.members[t]; ok {
		return m
	}

	m := fieldMembers(t)
	a.members[t] = m
	return m
}

// Len returns the number of cached descriptors.
func (a *Analyzer) Len() int {
	return len(a.cache)
}

func declaredCandidates(t reflect.Type) []Candidate {
	if t.Kind() == reflect.Interface || !t.Implements(declarerType) {
		return nil
	}

	v := reflect.Zero(t)
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		v = reflect.New(t.Elem())
	}

	return Candidates(v.Interface().(Declarer).Constructors()...)
}

func buildConstructors(t reflect.Type, candidates []Candidate) ([]*Constructor, error) {
	if len(candidates) == 0 {
		if implicit := implicitConstructor(t); implicit != nil {
			return []*Constructor{implicit}, nil
		}
		return nil, nil
	}

	ctors := make([]*Constructor, 0, len(candidates))
	for i, c := range candidates {
		ctor, err := newConstructor(t, c)
		if err != nil {
			return nil, err
		}
		ctor.Index = i
		ctors = append(ctors, ctor)
	}

	return ctors, nil
}

func newConstructor(t reflect.Type, c Candidate) (*Constructor, error) {
	if c.Func == nil {
		return nil, &InvalidConstructorError{Type: t, Reason: "constructor cannot be nil"}
	}

	fn := reflect.ValueOf(c.Func)
	fnType := fn.Type()

	if fnType.Kind() != reflect.Func {
		return nil, &InvalidConstructorError{Type: t, Constructor: fnType, Reason: "constructor must be a function"}
	}

	if fn.IsNil() {
		return nil, &InvalidConstructorError{Type: t, Constructor: fnType, Reason: "constructor cannot be nil"}
	}

	if fnType.IsVariadic() {
		return nil, &InvalidConstructorError{Type: t, Constructor: fnType, Reason: "variadic constructors are not supported"}
	}

	switch fnType.NumOut() {
	case 1:
	case 2:
		if !fnType.Out(1).Implements(errType) {
			return nil, &InvalidConstructorError{Type: t, Constructor: fnType, Reason: "second return value must be an error"}
		}
	default:
		return nil, &InvalidConstructorError{Type: t, Constructor: fnType, Reason: "constructor must return (T) or (T, error)"}
	}

	if !fnType.Out(0).AssignableTo(t) {
		return nil, &InvalidConstructorError{
			Type:        t,
			Constructor: fnType,
			Reason:      fmt.Sprintf("return type %v is not assignable to %v", fnType.Out(0), t),
		}
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := range params {
		params[i] = fnType.In(i)
	}

	ctor := &Constructor{
		Func:      fn,
		Params:    params,
		Preferred: c.Preferred,
		hasError:  fnType.NumOut() == 2,
	}

	ctor.build = func(args []reflect.Value) (reflect.Value, error) {
		out := fn.Call(args)
		if ctor.hasError && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}
		return out[0], nil
	}

	return ctor, nil
}

func implicitConstructor(t reflect.Type) *Constructor {
	switch {
	case t.Kind() == reflect.Struct:
		return &Constructor{
			Implicit: true,
			build: func([]reflect.Value) (reflect.Value, error) {
				return reflect.New(t).Elem(), nil
			},
		}
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		elem := t.Elem()
		return &Constructor{
			Implicit: true,
			build: func([]reflect.Value) (reflect.Value, error) {
				return reflect.New(elem), nil
			},
		}
	default:
		return nil
	}
}

// fieldMembers collects exported struct fields tagged for injection.
func fieldMembers(t reflect.Type) []Member {
	structType := t
	if structType.Kind() == reflect.Pointer {
		structType = structType.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return nil
	}

	var members []Member
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if !isInjectable(field) {
			continue
		}

		index := i
		members = append(members, Member{
			Name: field.Name,
			Type: field.Type,
			Set: func(target, value reflect.Value) {
				if target.Kind() == reflect.Pointer {
					target = target.Elem()
				}
				target.Field(index).Set(value)
			},
		})
	}

	return members
}

func isInjectable(field reflect.StructField) bool {
	val, ok := field.Tag.Lookup(TagName)
	if !ok || val == "-" {
		return false
	}

	// Unexported fields cannot be set from outside the declaring package.
	return field.IsExported()
}

func setterMember(t reflect.Type, setter any) (Member, error) {
	if setter == nil {
		return Member{}, &InvalidSetterError{Type: t, Reason: "setter cannot be nil"}
	}

	fn := reflect.ValueOf(setter)
	fnType := fn.Type()

	if fnType.Kind() != reflect.Func || fn.IsNil() {
		return Member{}, &InvalidSetterError{Type: t, Setter: fnType, Reason: "setter must be a non-nil function"}
	}

	if fnType.NumIn() != 2 || fnType.NumOut() != 0 || fnType.IsVariadic() {
		return Member{}, &InvalidSetterError{Type: t, Setter: fnType, Reason: "setter must have the form func(target, value)"}
	}

	byAddr := t.Kind() == reflect.Struct && fnType.In(0) == reflect.PointerTo(t)
	if !byAddr && !t.AssignableTo(fnType.In(0)) {
		return Member{}, &InvalidSetterError{
			Type:   t,
			Setter: fnType,
			Reason: fmt.Sprintf("%v is not assignable to setter target %v", t, fnType.In(0)),
		}
	}

	name := fnType.String()
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		name = f.Name()
	}

	return Member{
		Name: name,
		Type: fnType.In(1),
		Set: func(target, value reflect.Value) {
			if byAddr {
				target = target.Addr()
			}
			fn.Call([]reflect.Value{target, value})
		},
	}, nil
}
