package container

import (
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// ContextualBuilder implements the fluent contextual binding API.
//
//	err := c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3(...)
//	})
//
// Give rewrites the object definition of the concrete entry: every
// constructor parameter named like Needs, or whose type is registered
// under that name, gets the given value.
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// When starts a contextual binding for the object entry concrete.
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// Needs names the dependency: a constructor parameter name or a registered
// type name.
func (b *ContextualBuilder) Needs(dependency string) *ContextualBuilder {
	b.needs = dependency
	return b
}

// Give sets the value the concrete entry receives for the dependency. A
// Factory is called on each resolution of the concrete entry; definitions
// are resolved; anything else is passed as is.
func (b *ContextualBuilder) Give(value any) error {
	c := b.container
	if f, ok := value.(Factory); ok {
		value = definition.Factory(f)
	} else if f, ok := value.(func(*Container) any); ok {
		value = definition.Factory(f)
	}

	def, err := c.source.GetDefinition(b.concrete)
	if err != nil {
		return err
	}
	var base *definition.ObjectDefinition
	switch d := def.(type) {
	case *definition.ObjectDefinition:
		base = d
	case nil:
		base = definition.Autowire(b.concrete)
	default:
		return errors.Configuration("contextual binding of '%s' needs an object definition, got %T", b.concrete, def)
	}

	info, ok := c.types.Lookup(base.Type())
	if !ok {
		return errors.Configuration("contextual binding of '%s': type %s is not registered", b.concrete, base.Type())
	}

	override := definition.Create(base.Type())
	matched := false
	for _, p := range info.ConstructorParams() {
		typeName, _ := c.types.NameOf(p.Type)
		if p.Name == b.needs || typeName == b.needs {
			override.ConstructorParameter(p.Position, value)
			matched = true
		}
	}
	if !matched {
		return errors.Configuration("contextual binding of '%s': %s has no parameter for %s",
			b.concrete, info.ConstructorLabel(), b.needs)
	}
	return c.Set(b.concrete, override.Merge(base))
}
