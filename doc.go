// Package ioc provides a small inversion-of-control container for Go
// applications. Contract types are mapped to implementation types, and
// fully wired object graphs are built on demand from constructor functions
// and tagged struct fields.
//
// # Overview
//
// The container offers:
//   - Two lifetimes: Transient and Singleton
//   - Constructor injection with explicit constructor selection
//   - Member injection through struct tags and setter functions
//   - Injection into existing instances (BuildUp)
//   - Registered instances for values built outside the container
//   - Cycle detection with the full dependency chain in the error
//   - Static validation and graph rendering of registrations
//
// # Basic Usage
//
// Create a container, register types, and resolve:
//
//	c := ioc.New()
//	ioc.RegisterType[Logger, *ConsoleLogger](c, true)
//	ioc.RegisterConcrete[*UserService](c, false, ioc.Constructors(NewUserService))
//
//	svc, err := ioc.Resolve[*UserService](c)
//
// Registration never checks that dependencies exist; a missing dependency is
// reported when a graph that needs it is resolved, or earlier by Validate.
//
// # Constructors
//
// Go has no constructors, so they are declared: with the Constructors option
// at registration, or by the implementation type implementing Constructable.
// A constructor is a function returning the implementation, optionally with
// an error:
//
//	func NewUserService(repo Repository, logger Logger) *UserService
//	func OpenDatabase(cfg *Config) (*Database, error)
//
// When several are declared, the one wrapped with Inject is used. Otherwise
// the first constructor with the most parameters wins:
//
//	ioc.RegisterConcrete[*UserService](c, false, ioc.Constructors(
//	    NewUserService,
//	    ioc.Inject(NewUserServiceWithCache),
//	))
//
// Struct and pointer-to-struct types without declared constructors are built
// from their zero value.
//
// # Member Injection
//
// After construction, exported fields tagged with `inject` are resolved and
// assigned, followed by setters declared with the Setter option:
//
//	type Handler struct {
//	    Service *UserService `inject:""`
//	    Logger  Logger       `inject:""`
//	}
//
// BuildUp performs the same injection on an instance created elsewhere.
//
// # Lifetimes
//
// A transient contract is built on every request, including every time it
// is needed as a dependency. A singleton contract is built once and cached
// until the contract is registered again. A registered instance is always
// returned as is.
//
// # Concurrency
//
// A Container is not safe for concurrent use. Register everything during
// startup, then serialize resolution (the iochi package does this for HTTP
// handlers). Locator only guards the creation of its container.
//
// # Error Handling
//
// Resolution errors are typed and match sentinel values with errors.Is:
//   - NotRegisteredError: ErrNotRegistered, carries the resolution path
//   - CyclicDependencyError: ErrCyclicDependency, carries the cycle
//   - ConstructorError: wraps the constructor's error or ErrNoConstructor
//   - InvalidTargetError: ErrInvalidTarget, BuildUp on a non-pointer
//
// Misuse at registration (nil types, unassignable implementations, bad
// constructor signatures) panics with a *RegistrationError.
package ioc
