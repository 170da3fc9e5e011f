package confrontation

import (
	"errors"

	"github.com/junioryono/ioc"
	"github.com/samber/do/v2"
	"go.uber.org/dig"
)

// Contenders, in report order.
const (
	Straight = "Straight"
	IOC      = "ioc"
	Dig      = "dig"
	Do       = "do"
)

// Contenders lists every contender a scenario is timed for.
var Contenders = []string{Straight, IOC, Dig, Do}

// Widget is the contract every scenario resolves through.
type Widget interface {
	Spin() int
}

// Gear is the Widget every scenario builds.
type Gear struct {
	teeth int
}

// NewGear returns a Gear with twelve teeth.
func NewGear() *Gear { return &Gear{teeth: 12} }

// Spin returns the number of teeth.
func (g *Gear) Spin() int { return g.teeth }

// Assembly takes a Widget through its constructor.
type Assembly struct {
	Widget Widget
}

// NewAssembly returns an Assembly around w.
func NewAssembly(w Widget) *Assembly { return &Assembly{Widget: w} }

// Machine and Factory extend the chain to three constructed objects.
// Machine wraps an Assembly.
type Machine struct {
	Assembly *Assembly
}

// NewMachine returns a Machine around a.
func NewMachine(a *Assembly) *Machine { return &Machine{Assembly: a} }

// Factory wraps a Machine.
type Factory struct {
	Machine *Machine
}

// NewFactory returns a Factory around m.
func NewFactory(m *Machine) *Factory { return &Factory{Machine: m} }

// Probe receives its Widget through a tagged field.
type Probe struct {
	Widget Widget `inject:""`
}

type probeParams struct {
	dig.In

	Widget Widget
}

func newProbe(p probeParams) *Probe { return &Probe{Widget: p.Widget} }

// Bench runs a workload n times. A nil Bench means the contender has no
// equivalent for the scenario.
type Bench func(n int) error

// Scenario is one workload timed for every contender.
type Scenario struct {
	Name    string
	Title   string
	Benches map[string]Bench
}

// sink keeps results alive so straight construction is not optimized away.
var sink any

// Scenarios returns the workloads in report order.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:  "non-registered",
			Title: "Resolving non-registered type",
			Benches: map[string]Bench{
				IOC: func(n int) error {
					c := ioc.New()
					for range n {
						if _, err := ioc.Resolve[Widget](c); !ioc.IsNotRegistered(err) {
							return unexpected(err)
						}
					}
					return nil
				},
				Dig: func(n int) error {
					c := dig.New()
					for range n {
						if err := c.Invoke(func(w Widget) { sink = w }); err == nil {
							return errUnexpectedSuccess
						}
					}
					return nil
				},
				Do: func(n int) error {
					i := do.New()
					for range n {
						if _, err := do.Invoke[Widget](i); err == nil {
							return errUnexpectedSuccess
						}
					}
					return nil
				},
			},
		},
		{
			Name:  "concrete",
			Title: "Resolving type registered through concrete implementation",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						sink = NewGear()
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterConcrete[*Gear](c, false, ioc.Constructors(NewGear))
					return resolveN[*Gear](c, n)
				},
				Dig: func(n int) error {
					c := dig.New()
					if err := c.Provide(NewGear); err != nil {
						return err
					}
					return invokeN(c, n, func(g *Gear) { sink = g })
				},
				Do: func(n int) error {
					i := do.New()
					do.ProvideTransient(i, func(do.Injector) (*Gear, error) { return NewGear(), nil })
					return doInvokeN[*Gear](i, n)
				},
			},
		},
		{
			Name:  "interface",
			Title: "Resolving type registered through interface",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						var w Widget = NewGear()
						sink = w
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterType[Widget, *Gear](c, false, ioc.Constructors(NewGear))
					return resolveN[Widget](c, n)
				},
				Dig: func(n int) error {
					c := dig.New()
					if err := c.Provide(NewGear, dig.As(new(Widget))); err != nil {
						return err
					}
					return invokeN(c, n, func(w Widget) { sink = w })
				},
				Do: func(n int) error {
					i := do.New()
					provideWidget(i)
					return doInvokeN[Widget](i, n)
				},
			},
		},
		{
			Name:  "constructor",
			Title: "Constructor injection",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						sink = NewAssembly(NewGear())
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterType[Widget, *Gear](c, false, ioc.Constructors(NewGear))
					ioc.RegisterConcrete[*Assembly](c, false, ioc.Constructors(NewAssembly))
					return resolveN[*Assembly](c, n)
				},
				Dig: func(n int) error {
					c, err := provide(
						providerAs(NewGear, new(Widget)),
						provider(NewAssembly),
					)
					if err != nil {
						return err
					}
					return invokeN(c, n, func(a *Assembly) { sink = a })
				},
				Do: func(n int) error {
					i := do.New()
					provideWidget(i)
					provideAssembly(i)
					return doInvokeN[*Assembly](i, n)
				},
			},
		},
		{
			Name:  "chained",
			Title: "Chaining injection (three objects)",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						sink = NewFactory(NewMachine(NewAssembly(NewGear())))
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterType[Widget, *Gear](c, false, ioc.Constructors(NewGear))
					ioc.RegisterConcrete[*Assembly](c, false, ioc.Constructors(NewAssembly))
					ioc.RegisterConcrete[*Machine](c, false, ioc.Constructors(NewMachine))
					ioc.RegisterConcrete[*Factory](c, false, ioc.Constructors(NewFactory))
					return resolveN[*Factory](c, n)
				},
				Dig: func(n int) error {
					c, err := provide(
						providerAs(NewGear, new(Widget)),
						provider(NewAssembly),
						provider(NewMachine),
						provider(NewFactory),
					)
					if err != nil {
						return err
					}
					return invokeN(c, n, func(f *Factory) { sink = f })
				},
				Do: func(n int) error {
					i := do.New()
					provideWidget(i)
					provideAssembly(i)
					do.ProvideTransient(i, func(i do.Injector) (*Machine, error) {
						return NewMachine(do.MustInvoke[*Assembly](i)), nil
					})
					do.ProvideTransient(i, func(i do.Injector) (*Factory, error) {
						return NewFactory(do.MustInvoke[*Machine](i)), nil
					})
					return doInvokeN[*Factory](i, n)
				},
			},
		},
		{
			Name:  "property",
			Title: "Property injection",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						p := &Probe{}
						p.Widget = NewGear()
						sink = p
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterType[Widget, *Gear](c, false, ioc.Constructors(NewGear))
					ioc.RegisterConcrete[*Probe](c, false)
					return resolveN[*Probe](c, n)
				},
				Dig: func(n int) error {
					c, err := provide(
						providerAs(NewGear, new(Widget)),
						provider(newProbe),
					)
					if err != nil {
						return err
					}
					return invokeN(c, n, func(p *Probe) { sink = p })
				},
				Do: func(n int) error {
					i := do.New()
					provideWidget(i)
					do.ProvideTransient(i, func(i do.Injector) (*Probe, error) {
						p := &Probe{}
						p.Widget = do.MustInvoke[Widget](i)
						return p, nil
					})
					return doInvokeN[*Probe](i, n)
				},
			},
		},
		{
			Name:  "build-up",
			Title: "Build Up",
			Benches: map[string]Bench{
				Straight: func(n int) error {
					for range n {
						p := &Probe{}
						p.Widget = NewGear()
						sink = p
					}
					return nil
				},
				IOC: func(n int) error {
					c := ioc.New()
					ioc.RegisterType[Widget, *Gear](c, false, ioc.Constructors(NewGear))
					for range n {
						p := &Probe{}
						if err := c.BuildUp(p); err != nil {
							return err
						}
						sink = p
					}
					return nil
				},
			},
		},
	}
}

var errUnexpectedSuccess = errors.New("resolution of a non-registered type succeeded")

func unexpected(err error) error {
	if err == nil {
		return errUnexpectedSuccess
	}
	return err
}

func resolveN[T any](c *ioc.Container, n int) error {
	for range n {
		v, err := ioc.Resolve[T](c)
		if err != nil {
			return err
		}
		sink = v
	}
	return nil
}

type digProvider struct {
	constructor any
	opts        []dig.ProvideOption
}

func provider(constructor any) digProvider {
	return digProvider{constructor: constructor}
}

func providerAs(constructor, iface any) digProvider {
	return digProvider{constructor: constructor, opts: []dig.ProvideOption{dig.As(iface)}}
}

func provide(providers ...digProvider) (*dig.Container, error) {
	c := dig.New()
	for _, p := range providers {
		if err := c.Provide(p.constructor, p.opts...); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func invokeN(c *dig.Container, n int, fn any) error {
	for range n {
		if err := c.Invoke(fn); err != nil {
			return err
		}
	}
	return nil
}

func provideWidget(i do.Injector) {
	do.ProvideTransient(i, func(do.Injector) (Widget, error) { return NewGear(), nil })
}

func provideAssembly(i do.Injector) {
	do.ProvideTransient(i, func(i do.Injector) (*Assembly, error) {
		return NewAssembly(do.MustInvoke[Widget](i)), nil
	})
}

func doInvokeN[T any](i do.Injector, n int) error {
	for range n {
		v, err := do.Invoke[T](i)
		if err != nil {
			return err
		}
		sink = v
	}
	return nil
}
