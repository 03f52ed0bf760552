package container

import (
	"reflect"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/compiler"
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/definition/source"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
	"github.com/km-arc/go-container/framework/resolver"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container resolves entries from definitions.
//
// It owns:
//   - the singleton cache (name → resolved value)
//   - the set of entries currently being resolved, for cycle detection
//   - the accessor table of a compiled container, consulted before definitions
//
// Resolution is synchronous and depth first. The mutex only keeps the maps
// consistent; a container shared between goroutines should be warmed up
// first or guarded by the caller.
type Container struct {
	mu sync.Mutex

	source     *source.Chain
	dispatcher *resolver.Dispatcher
	types      *introspect.Registry
	logger     *zap.Logger

	// name → resolved singleton, or raw value given to Set
	singletons map[string]any

	// names whose resolution is in progress
	resolving map[string]struct{}

	// name → compiled accessor; nil for containers that are not compiled
	compiled map[string]compiler.Accessor

	// tag → []name
	tags map[string][]string

	// resolved callbacks: []func(name, value)
	afterResolving []func(string, any)

	deferred  *deferredSource
	providers *ProviderRegistry

	// > 0 while a service provider registers
	registering int
}

// New creates a container with an empty mutable definition source,
// autowiring of registered types off and the process environment.
func New() *Container {
	c, err := NewBuilder().Build()
	if err != nil {
		// Without definitions or compilation nothing can fail.
		panic(err)
	}
	return c
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the value of an entry. Singleton entries are resolved once
// and cached; prototype entries are resolved on every call.
func (c *Container) Get(name string) (any, error) {
	if v, ok := c.cached(name); ok {
		return v, nil
	}

	if accessor, ok := c.compiled[name]; ok {
		v, err := c.guard(name, accessor.Get)
		if err != nil {
			return nil, err
		}
		return c.resolved(name, accessor.Scope, v), nil
	}

	def, err := c.source.GetDefinition(name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, errors.NotFound(name)
	}

	v, err := c.guard(name, func() (any, error) {
		return c.dispatcher.Resolve(def, nil)
	})
	if err != nil {
		return nil, err
	}
	return c.resolved(name, def.Scope(), v), nil
}

// Make resolves an entry again, ignoring the singleton cache and leaving it
// untouched. params override constructor parameters by name. An entry
// without a definition falls back to a value given to Set.
func (c *Container) Make(name string, params map[string]any) (any, error) {
	if accessor, ok := c.compiled[name]; ok && len(params) == 0 {
		return c.guard(name, accessor.Get)
	}

	def, err := c.source.GetDefinition(name)
	if err != nil {
		return nil, err
	}
	if def == nil {
		if v, ok := c.cached(name); ok {
			return v, nil
		}
		return nil, errors.NotFound(name)
	}

	return c.guard(name, func() (any, error) {
		return c.dispatcher.Resolve(def, params)
	})
}

// Has reports whether Get can probably return name. It does not resolve
// anything, and entries of deferred providers are reported without loading
// the provider. An entry whose check leads back to itself is not resolvable.
func (c *Container) Has(name string) bool {
	if _, ok := c.cached(name); ok {
		return true
	}
	if _, ok := c.compiled[name]; ok {
		return true
	}
	if c.deferred.provides(name) {
		return true
	}

	c.mu.Lock()
	if _, busy := c.resolving[name]; busy {
		c.mu.Unlock()
		return false
	}
	c.resolving[name] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.resolving, name)
		c.mu.Unlock()
	}()

	def, err := c.source.GetDefinition(name)
	if err != nil || def == nil {
		return false
	}
	return c.dispatcher.IsResolvable(def, nil)
}

// Set stores a definition for name, or a value returned as is by Get.
// Setting a value replaces what was cached for name. Definitions cannot be
// added to a compiled container, nor when the definition source is fixed.
// Service providers are the exception: what they register while their
// Register method runs is resolved on the generic path, as long as name is
// not one of the compiled entries.
func (c *Container) Set(name string, value any) error {
	if def, ok := value.(definition.Definition); ok {
		if _, isCompiled := c.compiled[name]; isCompiled {
			return errors.Configuration("cannot set definition '%s': the entry is compiled", name)
		}
		if c.compiled != nil && !c.isRegistering() {
			return errors.Configuration("cannot set definition '%s': the container is compiled", name)
		}
		if !c.source.IsMutable() {
			return errors.Configuration("cannot set definition '%s': the definition source is not mutable", name)
		}
		if err := c.source.AddDefinition(def.Named(name)); err != nil {
			return err
		}
		c.mu.Lock()
		delete(c.singletons, name)
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.singletons, name)
	c.singletons[name] = value
	return nil
}

// InjectOn applies the property and method injections declared for the
// type of instance to instance itself and returns it.
func (c *Container) InjectOn(instance any) (any, error) {
	if instance == nil {
		return nil, errors.Configuration("cannot inject into nil")
	}
	typeName, ok := c.types.NameOf(reflect.TypeOf(instance))
	if !ok {
		typeName = introspect.TypeKey(reflect.TypeOf(instance))
	}

	var obj *definition.ObjectDefinition
	def, err := c.source.GetDefinition(typeName)
	if err != nil {
		return nil, err
	}
	if o, isObject := def.(*definition.ObjectDefinition); isObject {
		obj = o
	} else {
		obj = definition.Create(typeName)
	}
	return c.dispatcher.Resolve(definition.NewInstance(instance, obj), nil)
}

// Call invokes fn, a func or a definition.Callable. params are passed by
// position; remaining parameters get the container when their type fits, or
// the entry named after their registered type.
func (c *Container) Call(fn any, params map[int]any) (any, error) {
	return c.dispatcher.Call(fn, params)
}

// Reset drops cached singletons: the given names, or all of them.
func (c *Container) Reset(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(names) == 0 {
		c.singletons = make(map[string]any)
		return
	}
	for _, name := range names {
		delete(c.singletons, name)
	}
}

// KnownEntryNames lists, sorted, every entry with a definition, a compiled
// accessor or a cached value.
func (c *Container) KnownEntryNames() ([]string, error) {
	defs, err := c.source.Definitions()
	if err != nil {
		return nil, err
	}
	names := lo.Keys(defs)
	names = append(names, lo.Keys(c.compiled)...)

	c.mu.Lock()
	names = append(names, lo.Keys(c.singletons)...)
	c.mu.Unlock()

	names = lo.Uniq(names)
	slices.Sort(names)
	return names, nil
}

// Providers returns the provider registry of the container.
func (c *Container) Providers() *ProviderRegistry { return c.providers }

// ── internals ─────────────────────────────────────────────────────────────────

func (c *Container) whileRegistering(fn func()) {
	c.mu.Lock()
	c.registering++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.registering--
		c.mu.Unlock()
	}()
	fn()
}

func (c *Container) isRegistering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registering > 0
}

func (c *Container) cached(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.singletons[name]
	return v, ok
}

// resolved caches singletons and fires the resolved callbacks.
func (c *Container) resolved(name string, scope definition.Scope, v any) any {
	c.mu.Lock()
	if scope == definition.Singleton {
		c.singletons[name] = v
	}
	cbs := slices.Clone(c.afterResolving)
	c.mu.Unlock()

	for _, cb := range cbs {
		cb(name, v)
	}
	return v
}

// guard runs fn with name marked as resolving. Asking for name again before
// fn returns is a circular dependency. The mark is removed however fn exits.
func (c *Container) guard(name string, fn func() (any, error)) (any, error) {
	c.mu.Lock()
	if _, busy := c.resolving[name]; busy {
		c.mu.Unlock()
		return nil, errors.Circular(name)
	}
	c.resolving[name] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.resolving, name)
		c.mu.Unlock()
	}()

	c.logger.Debug("resolving entry", zap.String("entry", name))
	return fn()
}
