// Package resolver turns definitions into values.
//
// The Dispatcher picks the strategy for each definition variant. Strategies
// are created on first use and live as long as the dispatcher. Nested entry
// references always go back through Container.Get, so the container's cycle
// guard sees every hop of a resolution.
package resolver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
	"github.com/km-arc/go-container/framework/proxy"
)

// Container is the part of the container resolvers call back into.
type Container interface {
	Get(name string) (any, error)
	Has(name string) bool
}

// Resolver resolves one definition variant.
type Resolver interface {
	// Resolve produces the value. params override constructor parameters by name.
	Resolve(def definition.Definition, params map[string]any) (any, error)
	// IsResolvable is a cheap check without side effects.
	IsResolvable(def definition.Definition, params map[string]any) bool
}

// Options carries the collaborators of a Dispatcher. Zero fields get defaults.
type Options struct {
	Types   *introspect.Registry
	Env     config.EnvReader
	Proxies proxy.Factory
	Logger  *zap.Logger
}

// Dispatcher routes each definition to the resolver of its variant.
type Dispatcher struct {
	container Container
	types     *introspect.Registry
	env       config.EnvReader
	proxies   proxy.Factory
	logger    *zap.Logger

	value     *ValueResolver
	alias     *AliasResolver
	array     *ArrayResolver
	factory   *FactoryResolver
	decorator *DecoratorResolver
	envVar    *EnvResolver
	str       *StringResolver
	object    *ObjectResolver
	instance  *InstanceResolver
}

// NewDispatcher creates a dispatcher resolving nested entries through c.
func NewDispatcher(c Container, opts Options) *Dispatcher {
	d := &Dispatcher{
		container: c,
		types:     opts.Types,
		env:       opts.Env,
		proxies:   opts.Proxies,
		logger:    opts.Logger,
	}
	if d.types == nil {
		d.types = introspect.NewRegistry()
	}
	if d.env == nil {
		d.env = config.OSEnv{}
	}
	if d.proxies == nil {
		d.proxies = proxy.NewWrapperFactory()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

func (d *Dispatcher) Types() *introspect.Registry { return d.types }
func (d *Dispatcher) Env() config.EnvReader        { return d.env }
func (d *Dispatcher) Proxies() proxy.Factory       { return d.proxies }

// Resolve resolves def with the strategy of its variant.
func (d *Dispatcher) Resolve(def definition.Definition, params map[string]any) (any, error) {
	r, err := d.resolverFor(def)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("resolving definition",
		zap.String("entry", def.Name()),
		zap.String("definition", fmt.Sprintf("%T", def)))
	return r.Resolve(def, params)
}

// IsResolvable reports whether def can probably be resolved.
func (d *Dispatcher) IsResolvable(def definition.Definition, params map[string]any) bool {
	r, err := d.resolverFor(def)
	if err != nil {
		return false
	}
	return r.IsResolvable(def, params)
}

// Call invokes fn, a func or a definition.Callable, filling its parameters
// from params by position, with the container where its type fits, and
// with autowired registered types.
func (d *Dispatcher) Call(fn any, params map[int]any) (any, error) {
	callable, err := d.callable("", fn)
	if err != nil {
		return nil, err
	}
	return d.invoke(callable, invocation{
		label:    fmt.Sprintf("%T", fn),
		declared: params,
		provided: []any{d.container},
	})
}

// ResolveNested resolves a parameter, property or element value: references
// go through the container, inline definitions through the dispatcher, and
// anything else is returned as is.
func (d *Dispatcher) ResolveNested(v any) (any, error) {
	switch x := v.(type) {
	case *definition.Reference:
		return d.container.Get(x.Target())
	case definition.Definition:
		return d.Resolve(x, nil)
	default:
		return v, nil
	}
}

func (d *Dispatcher) resolverFor(def definition.Definition) (Resolver, error) {
	switch def.(type) {
	case *definition.ValueDefinition:
		if d.value == nil {
			d.value = &ValueResolver{}
		}
		return d.value, nil
	case *definition.AliasDefinition, *definition.Reference:
		if d.alias == nil {
			d.alias = &AliasResolver{container: d.container}
		}
		return d.alias, nil
	case *definition.ArrayDefinition, *definition.ArrayExtension:
		if d.array == nil {
			d.array = &ArrayResolver{d: d}
		}
		return d.array, nil
	case *definition.FactoryDefinition:
		if d.factory == nil {
			d.factory = &FactoryResolver{d: d}
		}
		return d.factory, nil
	case *definition.DecoratorDefinition:
		if d.decorator == nil {
			d.decorator = &DecoratorResolver{d: d}
		}
		return d.decorator, nil
	case *definition.EnvDefinition:
		if d.envVar == nil {
			d.envVar = &EnvResolver{d: d}
		}
		return d.envVar, nil
	case *definition.StringDefinition:
		if d.str == nil {
			d.str = &StringResolver{container: d.container}
		}
		return d.str, nil
	case *definition.ObjectDefinition:
		return d.objectResolver(), nil
	case *definition.InstanceDefinition:
		if d.instance == nil {
			d.instance = &InstanceResolver{objects: d.objectResolver()}
		}
		return d.instance, nil
	}
	return nil, errors.Configuration("no resolver registered for definition %T", def)
}

func (d *Dispatcher) objectResolver() *ObjectResolver {
	if d.object == nil {
		d.object = &ObjectResolver{d: d}
	}
	return d.object
}
