// Package iochi provides ioc integration for the Chi router.
//
// A Binder serializes access to a container so that handlers served
// concurrently can resolve from it, and Handle wraps controller methods so
// that the controller is resolved for every request.
//
// Example usage:
//
//	c := ioc.New()
//	ioc.RegisterType[UserController, *userController](c, false)
//
//	b := iochi.New(c)
//
//	r := chi.NewRouter()
//	r.Use(b.Middleware())
//	r.Get("/users/{id}", iochi.Handle(b, UserController.GetByID))
package iochi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"sync"

	"github.com/junioryono/ioc"
)

// ErrNoBinder is returned by FromContext when the request was not served
// through Binder.Middleware.
var ErrNoBinder = errors.New("no binder in context")

type contextKey struct{}

// Config holds the configuration of a Binder.
type Config struct {
	// ErrorHandler is called when a middleware function fails.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// Middlewares are functions that run before the next handler, with
	// access to the binder. They can be used to build up request data.
	Middlewares []func(ioc.Resolver, *http.Request) error
}

// Option configures a Binder.
type Option func(*Config)

// WithErrorHandler sets the error handler for middleware failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithMiddleware adds a middleware function run by Binder.Middleware.
// Multiple middlewares are executed in the order they are added.
func WithMiddleware(mw func(ioc.Resolver, *http.Request) error) Option {
	return func(c *Config) {
		c.Middlewares = append(c.Middlewares, mw)
	}
}

func defaultConfig() *Config {
	return &Config{
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("request middleware failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// Binder serializes resolution from a container shared by concurrent
// requests. It implements ioc.Resolver.
type Binder struct {
	mu       sync.Mutex
	resolver ioc.Resolver
	cfg      *Config
}

var _ ioc.Resolver = (*Binder)(nil)

// New creates a Binder over resolver.
func New(resolver ioc.Resolver, opts ...Option) *Binder {
	if resolver == nil {
		panic("resolver cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Binder{
		resolver: resolver,
		cfg:      cfg,
	}
}

// Resolve resolves t while holding the binder's lock.
func (b *Binder) Resolve(t reflect.Type) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolver.Resolve(t)
}

// BuildUp injects the members of instance while holding the binder's lock.
func (b *Binder) BuildUp(instance any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.resolver.BuildUp(instance)
}

// Middleware creates a Chi middleware that attaches the binder to the
// request context, where FromContext finds it, and runs the configured
// middleware functions.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(b.Middleware())
func (b *Binder) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(NewContext(r.Context(), b))

			for _, mw := range b.cfg.Middlewares {
				if err := mw(b, r); err != nil {
					b.cfg.ErrorHandler(w, r, err)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// NewContext returns a copy of ctx carrying b.
func NewContext(ctx context.Context, b *Binder) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// FromContext returns the binder attached by Binder.Middleware.
func FromContext(ctx context.Context) (*Binder, error) {
	b, ok := ctx.Value(contextKey{}).(*Binder)
	if !ok || b == nil {
		return nil, ErrNoBinder
	}

	return b, nil
}

// HandlerConfig holds configuration for the Handle wrapper.
type HandlerConfig struct {
	// PanicRecovery enables panic recovery in the handler.
	PanicRecovery bool

	// PanicHandler is called when a panic occurs (if PanicRecovery is true).
	PanicHandler func(http.ResponseWriter, *http.Request, any)

	// BinderErrorHandler is called when no binder is available.
	BinderErrorHandler func(http.ResponseWriter, *http.Request, error)

	// ResolutionErrorHandler is called when controller resolution fails.
	ResolutionErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// HandlerOption configures the Handle wrapper.
type HandlerOption func(*HandlerConfig)

// WithPanicRecovery enables or disables panic recovery in the handler.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicRecovery = enabled
	}
}

// WithPanicHandler sets the handler for panics.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *HandlerConfig) {
		c.PanicHandler = h
	}
}

// WithBinderErrorHandler sets the error handler for a missing binder.
func WithBinderErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.BinderErrorHandler = h
	}
}

// WithResolutionErrorHandler sets the error handler for controller resolution failures.
func WithResolutionErrorHandler(h func(http.ResponseWriter, *http.Request, error)) HandlerOption {
	return func(c *HandlerConfig) {
		c.ResolutionErrorHandler = h
	}
}

func defaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		PanicRecovery: false,
		PanicHandler: func(w http.ResponseWriter, r *http.Request, v any) {
			slog.Error("panic in handler", "panic", v)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		BinderErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to get binder from context", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
		ResolutionErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("failed to resolve controller", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

// Handle wraps a controller method so that the controller type T is
// resolved for every request. The controller is resolved from b, or from the
// binder in the request context when b is nil.
//
// The method signature should be: func(T, http.ResponseWriter, *http.Request)
//
// Example:
//
//	type UserController interface {
//	    GetByID(http.ResponseWriter, *http.Request)
//	}
//
//	r.Get("/users/{id}", iochi.Handle(b, UserController.GetByID))
func Handle[T any](b *Binder, method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.PanicHandler(w, r, v)
				}
			}()
		}

		binder := b
		if binder == nil {
			var err error
			binder, err = FromContext(r.Context())
			if err != nil {
				cfg.BinderErrorHandler(w, r, err)
				return
			}
		}

		controller, err := ioc.Resolve[T](binder)
		if err != nil {
			cfg.ResolutionErrorHandler(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
