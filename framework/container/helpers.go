package container

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// ── Registration ──────────────────────────────────────────────────────────────

// Factory builds a value from the container.
type Factory func(c *Container) any

// Bind registers a factory called on every Get.
//
//	c.Bind("request.id", func(c *container.Container) any { return uuid.New() })
func (c *Container) Bind(name string, factory Factory) {
	c.mustSet(name, definition.Factory(factory).InScope(definition.Prototype))
}

// Singleton registers a factory called once; later Gets return the same value.
//
//	c.Singleton("cache", func(c *container.Container) any {
//	    cfg := container.MustResolve[*config.Config](c, "config")
//	    return cache.New(cfg)
//	})
func (c *Container) Singleton(name string, factory Factory) {
	c.mustSet(name, definition.Factory(factory))
}

// Instance stores an already built value. Definitions are stored as values
// too, not resolved.
func (c *Container) Instance(name string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.singletons[name] = instance
}

// Alias makes alias resolve to whatever name resolves to.
//
//	c.Alias("cache", "cache.manager")
func (c *Container) Alias(name, alias string) {
	c.mustSet(alias, definition.Alias(name))
}

// Extend decorates the value of name. fn receives the value the previous
// definition resolves to, or nil if there is none.
//
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
func (c *Container) Extend(name string, fn func(instance any, c *Container) any) {
	if v, ok := c.cached(name); ok {
		if def, _ := c.source.GetDefinition(name); def == nil {
			// Only an instance so far: make it the decorated definition.
			c.mustSet(name, definition.Value(v))
		}
	}
	c.mustSet(name, definition.Decorate(fn))
}

func (c *Container) mustSet(name string, def definition.Definition) {
	if err := c.Set(name, def); err != nil {
		panic(fmt.Sprintf("container: registering [%s]: %v", name, err))
	}
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag groups entries under a tag.
//
//	c.Tag([]string{"report.cpu", "report.memory"}, "reports")
func (c *Container) Tag(names []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], names...)
}

// Tagged resolves every entry under tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.Lock()
	names := append([]string(nil), c.tags[tag]...)
	c.mu.Unlock()

	out := make([]any, 0, len(names))
	for _, name := range names {
		v, err := c.Get(name)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving tag %s", tag)
		}
		out = append(out, v)
	}
	return out, nil
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after Get resolves an entry.
// Values served from the singleton cache do not fire it.
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// entry name when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result.
//
//	db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("container: [%s] resolved to %T, not %s", name, v, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, name string) T {
	typed, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return typed
}
