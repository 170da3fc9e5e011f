package testutil

import (
	"log/slog"
	"reflect"
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/require"
)

// Fixture describes one type registration for tests
type Fixture struct {
	Contract       reflect.Type
	Implementation reflect.Type
	Singleton      bool
	Options        []ioc.TypeOption
}

// Register applies the fixture to c
func (f Fixture) Register(c *ioc.Container) {
	c.RegisterType(f.Contract, f.Implementation, f.Singleton, f.Options...)
}

// CommonFixtures provides common registrations for testing
var CommonFixtures = struct {
	Logger   Fixture
	Database Fixture
	Cache    Fixture
	Service  Fixture
}{
	Logger: Fixture{
		Contract:       reflect.TypeFor[TestLogger](),
		Implementation: reflect.TypeFor[*TestLoggerImpl](),
		Singleton:      true,
		Options:        []ioc.TypeOption{ioc.Constructors(NewTestLogger)},
	},
	Database: Fixture{
		Contract:       reflect.TypeFor[TestDatabase](),
		Implementation: reflect.TypeFor[*TestDatabaseImpl](),
		Singleton:      true,
		Options:        []ioc.TypeOption{ioc.Constructors(NewTestDatabase)},
	},
	Cache: Fixture{
		Contract:       reflect.TypeFor[TestCache](),
		Implementation: reflect.TypeFor[*TestCacheImpl](),
		Singleton:      true,
		Options:        []ioc.TypeOption{ioc.Constructors(NewTestCache)},
	},
	Service: Fixture{
		Contract:       reflect.TypeFor[*TestServiceWithDeps](),
		Implementation: reflect.TypeFor[*TestServiceWithDeps](),
		Options:        []ioc.TypeOption{ioc.Constructors(NewTestServiceWithDeps)},
	},
}

// ContainerBuilder provides a fluent interface for building test containers
type ContainerBuilder struct {
	t         *testing.T
	fixtures  []Fixture
	instances map[reflect.Type]any
	order     []reflect.Type
	opts      []ioc.Option
}

// NewContainerBuilder creates a new ContainerBuilder
func NewContainerBuilder(t *testing.T) *ContainerBuilder {
	return &ContainerBuilder{
		t:         t,
		instances: make(map[reflect.Type]any),
	}
}

// WithFixtures adds registrations to the container
func (b *ContainerBuilder) WithFixtures(fixtures ...Fixture) *ContainerBuilder {
	b.fixtures = append(b.fixtures, fixtures...)
	return b
}

// WithCommon adds the logger, database, cache and service fixtures
func (b *ContainerBuilder) WithCommon() *ContainerBuilder {
	return b.WithFixtures(
		CommonFixtures.Logger,
		CommonFixtures.Database,
		CommonFixtures.Cache,
		CommonFixtures.Service,
	)
}

// WithInstance registers instance for contract after all fixtures
func (b *ContainerBuilder) WithInstance(contract reflect.Type, instance any) *ContainerBuilder {
	if _, ok := b.instances[contract]; !ok {
		b.order = append(b.order, contract)
	}
	b.instances[contract] = instance
	return b
}

// WithOptions sets container options
func (b *ContainerBuilder) WithOptions(opts ...ioc.Option) *ContainerBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// WithTestLogger routes container logs to the test log
func (b *ContainerBuilder) WithTestLogger() *ContainerBuilder {
	return b.WithOptions(ioc.WithLogger(slog.New(slog.NewTextHandler(testWriter{b.t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))))
}

// Build creates the Container
func (b *ContainerBuilder) Build() *ioc.Container {
	c := ioc.New(b.opts...)
	for _, f := range b.fixtures {
		f.Register(c)
	}
	for _, t := range b.order {
		c.RegisterInstance(t, b.instances[t])
	}
	return c
}

// MustValidate builds the Container and fails the test if it does not validate
func (b *ContainerBuilder) MustValidate() *ioc.Container {
	c := b.Build()
	require.NoError(b.t, c.Validate(), "container validation failed")
	return c
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
