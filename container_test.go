package ioc_test

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test types
type Store interface {
	Get(key string) string
}

type MemoryStore struct {
	prefix string
}

func (s *MemoryStore) Get(key string) string { return s.prefix + key }

// Cache depends on a concrete type.
type Cache struct {
	Store *MemoryStore
}

func NewCache(s *MemoryStore) *Cache { return &Cache{Store: s} }

// Repository depends on an interface.
type Repository struct {
	Store Store
}

func NewRepository(s Store) *Repository { return &Repository{Store: s} }

// Connection has two constructors of different arity.
type Connection struct {
	Via string
}

func NewConnection(host string, port int) *Connection {
	return &Connection{Via: "host-port"}
}

func NewConnectionAs(user string, port int, host string) *Connection {
	return &Connection{Via: "user-port-host"}
}

// Mailer marks its shortest constructor for injection.
type Mailer struct {
	Store *MemoryStore
}

func (*Mailer) Constructors() []any {
	return []any{
		func(host string, port int) *Mailer { return &Mailer{} },
		func(user string, port int, host string) *Mailer { return &Mailer{} },
		ioc.Inject(func(s *MemoryStore) *Mailer { return &Mailer{Store: s} }),
	}
}

// Parent and Child depend on each other.
type Parent struct {
	Child *Child
}

func NewParent(c *Child) *Parent { return &Parent{Child: c} }

type Child struct {
	Parent *Parent
	id     int
}

func (*Child) Constructors() []any {
	return []any{
		func() *Child { return &Child{id: 1} },
		func(p *Parent) *Child { return &Child{Parent: p} },
	}
}

// Member injection types.
type Clock struct {
	zone string
}

type Scheduler struct {
	Clock *Clock `inject:""`
}

type Timer struct {
	Clock *Clock
}

type Alarm struct {
	clock *Clock `inject:""` //nolint:unused // never injected
	name  string
}

func (a *Alarm) Clock() *Clock { return a.clock }

func TestContainer_Basic(t *testing.T) {
	t.Run("resolves registered type", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterType[Store, *MemoryStore](c, false)

		result := testutil.AssertResolvable[Store](t, c)

		assert.IsType(t, &MemoryStore{}, result)
	})

	t.Run("singleton per interface", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterType[Store, *MemoryStore](c, true)

		testutil.AssertSingleton[Store](t, c)
	})

	t.Run("singleton per concrete type", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*MemoryStore](c, true)

		testutil.AssertSingleton[*MemoryStore](t, c)
	})

	t.Run("transient yields a new instance per request", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*MemoryStore](c, false)

		testutil.AssertTransient[*MemoryStore](t, c)
	})

	t.Run("not registered type", func(t *testing.T) {
		c := ioc.New()

		nre := testutil.AssertNotRegistered[*MemoryStore](t, c)
		assert.Equal(t, reflect.TypeFor[*MemoryStore](), nre.Type)
	})

	t.Run("registered instance per interface", func(t *testing.T) {
		c := ioc.New()
		instance := &MemoryStore{prefix: "p:"}
		ioc.RegisterInstance[Store](c, instance)

		result := testutil.AssertResolvable[Store](t, c)

		assert.Same(t, instance, result)
	})

	t.Run("registered instance per concrete type", func(t *testing.T) {
		c := ioc.New()
		instance := &MemoryStore{prefix: "p:"}
		ioc.RegisterInstance(c, instance)

		result := testutil.AssertResolvable[*MemoryStore](t, c)

		assert.Same(t, instance, result)
	})

	t.Run("registered non-pointer instance", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterInstance(c, "a")
		ioc.RegisterInstance(c, 42)

		assert.Equal(t, "a", ioc.MustResolve[string](c))
		assert.Equal(t, 42, ioc.MustResolve[int](c))
	})

	t.Run("nil instance for interface contract", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterInstance[Store](c, nil)

		result, err := ioc.Resolve[Store](c)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.True(t, ioc.IsRegistered[Store](c))
	})
}

func TestContainer_Chaining(t *testing.T) {
	scheduler := &Scheduler{}
	c := ioc.New().
		RegisterType(reflect.TypeFor[Store](), reflect.TypeFor[*MemoryStore](), false).
		RegisterType(reflect.TypeFor[*Repository](), reflect.TypeFor[*Repository](), false, ioc.Constructors(NewRepository)).
		RegisterType(reflect.TypeFor[*Clock](), reflect.TypeFor[*Clock](), true).
		RegisterInstance(reflect.TypeFor[*Scheduler](), scheduler)

	result1 := testutil.AssertResolvable[*Scheduler](t, c)
	result2 := testutil.AssertResolvable[*Repository](t, c)

	assert.Same(t, scheduler, result1)
	assert.Nil(t, result1.Clock, "registered instances are not built up")
	assert.IsType(t, &MemoryStore{}, result2.Store)
}

func TestContainer_Registration(t *testing.T) {
	t.Run("nil types panic", func(t *testing.T) {
		c := ioc.New()

		testutil.AssertRegistrationPanics(t, ioc.ErrTypeNil, func() {
			c.RegisterType(nil, reflect.TypeFor[*MemoryStore](), false)
		})
		testutil.AssertRegistrationPanics(t, ioc.ErrTypeNil, func() {
			c.RegisterType(reflect.TypeFor[Store](), nil, false)
		})
		testutil.AssertRegistrationPanics(t, ioc.ErrTypeNil, func() {
			c.RegisterInstance(nil, &MemoryStore{})
		})
	})

	t.Run("unassignable implementation panics", func(t *testing.T) {
		c := ioc.New()

		regErr := testutil.AssertRegistrationPanics(t, ioc.ErrNotAssignable, func() {
			ioc.RegisterType[Store, MemoryStore](c, false)
		})
		require.NotNil(t, regErr)
		assert.Equal(t, reflect.TypeFor[Store](), regErr.Contract)
		assert.Equal(t, "register-type", regErr.Operation)
		assert.Contains(t, regErr.Error(), "MemoryStore is not assignable to Store")
	})

	t.Run("unassignable instance panics", func(t *testing.T) {
		c := ioc.New()

		testutil.AssertRegistrationPanics(t, ioc.ErrNotAssignable, func() {
			c.RegisterInstance(reflect.TypeFor[Store](), MemoryStore{})
		})
	})

	t.Run("nil instance for non-nillable contract panics", func(t *testing.T) {
		c := ioc.New()

		testutil.AssertRegistrationPanics(t, ioc.ErrInstanceNil, func() {
			c.RegisterInstance(reflect.TypeFor[int](), nil)
		})
	})

	t.Run("invalid constructor panics", func(t *testing.T) {
		c := ioc.New()

		regErr := testutil.AssertRegistrationPanics(t, nil, func() {
			ioc.RegisterConcrete[*Cache](c, false, ioc.Constructors(func() *Clock { return nil }))
		})
		require.NotNil(t, regErr)

		var ice *ioc.InvalidConstructorError
		assert.ErrorAs(t, regErr, &ice)
	})

	t.Run("invalid setter panics", func(t *testing.T) {
		c := ioc.New()

		regErr := testutil.AssertRegistrationPanics(t, nil, func() {
			ioc.RegisterConcrete[*Timer](c, false, ioc.Setter(func(*Cache, *Clock) {}))
		})
		require.NotNil(t, regErr)

		var ise *ioc.InvalidSetterError
		assert.ErrorAs(t, regErr, &ise)
	})

	t.Run("dependencies are not checked at registration", func(t *testing.T) {
		c := ioc.New()

		assert.NotPanics(t, func() {
			ioc.RegisterConcrete[*Cache](c, false, ioc.Constructors(NewCache))
		})
		assert.True(t, ioc.IsRegistered[*Cache](c))
		assert.False(t, ioc.IsRegistered[*MemoryStore](c))
	})

	t.Run("last registration wins", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterType[Store, *MemoryStore](c, false, ioc.Constructors(func() *MemoryStore {
			return &MemoryStore{prefix: "first:"}
		}))
		ioc.RegisterType[Store, *MemoryStore](c, false, ioc.Constructors(func() *MemoryStore {
			return &MemoryStore{prefix: "second:"}
		}))

		assert.Equal(t, "second:k", ioc.MustResolve[Store](c).Get("k"))
		assert.Len(t, c.Registrations(), 1)
	})

	t.Run("re-registration drops cached singleton", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*MemoryStore](c, true)
		first := ioc.MustResolve[*MemoryStore](c)

		ioc.RegisterConcrete[*MemoryStore](c, true)
		second := ioc.MustResolve[*MemoryStore](c)

		assert.NotSame(t, first, second)
	})

	t.Run("re-registration as transient", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*MemoryStore](c, true)
		ioc.MustResolve[*MemoryStore](c)

		ioc.RegisterConcrete[*MemoryStore](c, false)

		testutil.AssertTransient[*MemoryStore](t, c)
	})

	t.Run("type registration replaces registered instance", func(t *testing.T) {
		c := ioc.New()
		instance := &MemoryStore{prefix: "instance"}
		ioc.RegisterInstance(c, instance)
		ioc.RegisterConcrete[*MemoryStore](c, false)

		assert.NotSame(t, instance, ioc.MustResolve[*MemoryStore](c))
	})

	t.Run("instance takes precedence over type registration", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*MemoryStore](c, false)
		instance := &MemoryStore{prefix: "instance"}
		ioc.RegisterInstance(c, instance)

		assert.Same(t, instance, ioc.MustResolve[*MemoryStore](c))
	})
}

func TestContainer_Registrations(t *testing.T) {
	c := ioc.New()
	ioc.RegisterType[Store, *MemoryStore](c, true)
	ioc.RegisterConcrete[*Repository](c, false, ioc.Constructors(NewRepository))
	ioc.RegisterInstance(c, &Clock{zone: "UTC"})
	ioc.RegisterInstance[Store](c, &MemoryStore{})

	assert.Equal(t, []ioc.Registration{
		{
			Contract:       reflect.TypeFor[Store](),
			Implementation: reflect.TypeFor[*MemoryStore](),
			Lifetime:       ioc.Singleton,
			Instance:       true,
		},
		{
			Contract:       reflect.TypeFor[*Repository](),
			Implementation: reflect.TypeFor[*Repository](),
			Lifetime:       ioc.Transient,
		},
		{
			Contract:       reflect.TypeFor[*Clock](),
			Implementation: reflect.TypeFor[*Clock](),
			Lifetime:       ioc.Singleton,
			Instance:       true,
		},
	}, c.Registrations())
}

func TestContainer_Validate(t *testing.T) {
	t.Run("valid container", func(t *testing.T) {
		c := testutil.NewContainerBuilder(t).WithCommon().MustValidate()

		svc := testutil.AssertResolvable[*testutil.TestServiceWithDeps](t, c)
		assert.NotNil(t, svc.Cache)
	})

	t.Run("missing dependency", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*Repository](c, false, ioc.Constructors(NewRepository))

		err := c.Validate()

		assert.True(t, ioc.IsNotRegistered(err))
		var nre *ioc.NotRegisteredError
		require.ErrorAs(t, err, &nre)
		assert.Equal(t, reflect.TypeFor[Store](), nre.Type)
	})

	t.Run("missing member dependency", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*Scheduler](c, false)

		assert.True(t, ioc.IsNotRegistered(c.Validate()))
	})

	t.Run("cycle", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*Parent](c, false, ioc.Constructors(NewParent))
		ioc.RegisterConcrete[*Child](c, false)

		assert.True(t, ioc.IsCyclicDependency(c.Validate()))
	})

	t.Run("instance breaks cycle", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterConcrete[*Parent](c, false, ioc.Constructors(NewParent))
		ioc.RegisterConcrete[*Child](c, false)
		ioc.RegisterInstance(c, &Parent{})

		assert.NoError(t, c.Validate())
	})

	t.Run("no constructor", func(t *testing.T) {
		c := ioc.New()
		ioc.RegisterType[Store, Store](c, false)

		assert.ErrorIs(t, c.Validate(), ioc.ErrNoConstructor)
	})
}

func TestContainer_Graph(t *testing.T) {
	c := ioc.New()
	ioc.RegisterType[Store, *MemoryStore](c, true)
	ioc.RegisterConcrete[*Repository](c, false, ioc.Constructors(NewRepository))

	var dot bytes.Buffer
	require.NoError(t, c.WriteDOT(&dot))
	assert.Contains(t, dot.String(), "digraph dependencies {")
	assert.Contains(t, dot.String(), "n1 -> n0;")

	var text bytes.Buffer
	require.NoError(t, c.WriteText(&text))
	assert.Contains(t, text.String(), "*Repository")
	assert.Contains(t, text.String(), "Dependencies: [Store]")
}

func TestContainer_ID(t *testing.T) {
	a, b := ioc.New(), ioc.New()

	_, err := uuid.Parse(a.ID())
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestContainer_Hooks(t *testing.T) {
	t.Run("on resolved", func(t *testing.T) {
		var gotType reflect.Type
		var gotInstance any
		var gotElapsed time.Duration = -1

		c := ioc.New(ioc.WithOnResolved(func(typ reflect.Type, instance any, elapsed time.Duration) {
			gotType, gotInstance, gotElapsed = typ, instance, elapsed
		}))
		ioc.RegisterConcrete[*MemoryStore](c, false)

		store := ioc.MustResolve[*MemoryStore](c)

		assert.Equal(t, reflect.TypeFor[*MemoryStore](), gotType)
		assert.Same(t, store, gotInstance)
		assert.GreaterOrEqual(t, gotElapsed, time.Duration(0))
	})

	t.Run("on error", func(t *testing.T) {
		var errs []error
		c := ioc.New(ioc.WithOnError(func(_ reflect.Type, err error) {
			errs = append(errs, err)
		}))

		_, err := ioc.Resolve[*MemoryStore](c)
		require.Error(t, err)
		require.Error(t, c.BuildUp(Scheduler{}))

		require.Len(t, errs, 2)
		assert.True(t, ioc.IsNotRegistered(errs[0]))
		assert.ErrorIs(t, errs[1], ioc.ErrInvalidTarget)
	})
}

func TestContainer_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := ioc.New(ioc.WithLogger(logger))
	ioc.RegisterType[Store, *MemoryStore](c, true)
	_, _ = ioc.Resolve[*Repository](c)

	out := buf.String()
	assert.Contains(t, out, "msg=\"registered type\"")
	assert.Contains(t, out, "contract=Store")
	assert.Contains(t, out, "implementation=*MemoryStore")
	assert.Contains(t, out, "lifetime=Singleton")
	assert.Contains(t, out, "container="+c.ID())
	assert.Contains(t, out, "msg=\"resolution failed\"")
	assert.True(t, strings.Count(out, "\n") >= 2)
}

func TestContainer_ResolveNilType(t *testing.T) {
	_, err := ioc.New().Resolve(nil)
	assert.True(t, errors.Is(err, ioc.ErrTypeNil))
}
