package ioc

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/junioryono/ioc/internal/metadata"
)

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger     *slog.Logger
	onResolved func(reflect.Type, any, time.Duration)
	onError    func(reflect.Type, error)
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger registrations and failed resolutions are
// reported to at debug level. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	})
}

// WithOnResolved sets a hook called after every successful top-level
// Resolve with the requested type, the instance and the elapsed time.
func WithOnResolved(fn func(t reflect.Type, instance any, elapsed time.Duration)) Option {
	return optionFunc(func(opts *options) {
		opts.onResolved = fn
	})
}

// WithOnError sets a hook called after every failed top-level Resolve or
// BuildUp.
func WithOnError(fn func(t reflect.Type, err error)) Option {
	return optionFunc(func(opts *options) {
		opts.onError = fn
	})
}

// TypeOption configures a RegisterType call.
type TypeOption interface {
	applyType(*typeOptions)
}

type typeOptions struct {
	constructors []any
	setters      []any
}

type typeOptionFunc func(*typeOptions)

func (f typeOptionFunc) applyType(opts *typeOptions) {
	f(opts)
}

// Constructors declares the constructors of the implementation type, in
// declaration order. Each entry is a function returning the implementation
// (optionally with an error as second result), or such a function wrapped
// with Inject. Declared constructors replace those of a Constructable
// implementation.
//
// The constructor marked with Inject is used; otherwise the first one with
// the most parameters.
func Constructors(fns ...any) TypeOption {
	return typeOptionFunc(func(opts *typeOptions) {
		opts.constructors = append(opts.constructors, fns...)
	})
}

// Setter declares an injectable member as a function taking the
// implementation and the value to inject, such as
//
//	func(s *Service, l Logger) { s.SetLogger(l) }
//
// Setters run after tagged fields, in declaration order.
func Setter(fn any) TypeOption {
	return typeOptionFunc(func(opts *typeOptions) {
		opts.setters = append(opts.setters, fn)
	})
}

// Inject marks a constructor as the injection constructor. The first marked
// constructor wins over any arity.
func Inject(fn any) any {
	return metadata.Prefer(fn)
}

// Constructable is implemented by types that declare their own
// constructors. Constructors is called on the zero value of the type (a
// new pointer for pointer-to-struct types), entries follow the rules of the
// Constructors option.
type Constructable = metadata.Declarer

// InjectTag is the struct tag marking exported fields for injection. Any
// value other than "-" marks the field.
const InjectTag = metadata.TagName
