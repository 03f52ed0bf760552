package definition

import (
	"fmt"
	"maps"
)

// Callable names a method on another entry, used where a factory func is expected.
//
//	definition.Factory(definition.Callable{Entry: "mailer.factory", Method: "Create"})
type Callable struct {
	Entry  string
	Method string
}

func (c Callable) String() string {
	return fmt.Sprintf("%s.%s", c.Entry, c.Method)
}

// FactoryDefinition produces a value by invoking an external callable. The
// callable is a func or a Callable; its parameters are filled with the
// container, the RequestedEntry, positional parameters and autowired types.
type FactoryDefinition struct {
	name    string
	scope   Scope
	factory any
	params  map[int]any
}

func (d *FactoryDefinition) Name() string  { return d.name }
func (d *FactoryDefinition) Scope() Scope  { return orDefault(d.scope) }
func (d *FactoryDefinition) Callable() any { return d.factory }

func (d *FactoryDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	cp.params = maps.Clone(d.params)
	return &cp
}

// Parameters returns a copy of the positional parameters.
func (d *FactoryDefinition) Parameters() map[int]any {
	return maps.Clone(d.params)
}

// Parameter sets the value passed at position index of the callable.
func (d *FactoryDefinition) Parameter(index int, value any) *FactoryDefinition {
	if d.params == nil {
		d.params = make(map[int]any)
	}
	d.params[index] = value
	return d
}

func (d *FactoryDefinition) InScope(scope Scope) *FactoryDefinition {
	d.scope = scope
	return d
}

// DecoratorDefinition wraps the value of the previous definition of the same
// entry. The callable receives (previous, container).
type DecoratorDefinition struct {
	name     string
	factory  any
	extended Definition
}

func (d *DecoratorDefinition) Name() string         { return d.name }
func (d *DecoratorDefinition) Callable() any        { return d.factory }
func (d *DecoratorDefinition) Extended() Definition { return d.extended }

// Scope follows the decorated definition.
func (d *DecoratorDefinition) Scope() Scope {
	if d.extended != nil {
		return d.extended.Scope()
	}
	return Singleton
}

func (d *DecoratorDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

func (d *DecoratorDefinition) WithExtended(previous Definition) Definition {
	cp := *d
	cp.extended = previous
	return &cp
}
