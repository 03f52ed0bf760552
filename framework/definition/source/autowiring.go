package source

import (
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/introspect"
)

// Autowiring derives object definitions from the type registry: constructor
// parameters without a declared value become references to the entry named
// after the parameter's registered type.
type Autowiring struct {
	types    *introspect.Registry
	implicit bool
}

// NewAutowiring creates the source. With implicit set, every instantiable
// registered type is an entry even without a definition; otherwise only
// definitions declared with definition.Autowire are completed.
func NewAutowiring(types *introspect.Registry, implicit bool) *Autowiring {
	return &Autowiring{types: types, implicit: implicit}
}

func (a *Autowiring) GetDefinition(name string) (definition.Definition, error) {
	if !a.implicit {
		return nil, nil
	}
	info, ok := a.types.Lookup(name)
	if !ok || !info.Instantiable() {
		return nil, nil
	}
	return a.Complete(definition.Autowire().Named(name).(*definition.ObjectDefinition)), nil
}

// Complete fills the constructor positions obj leaves open. Optional
// parameters keep their default.
func (a *Autowiring) Complete(obj *definition.ObjectDefinition) *definition.ObjectDefinition {
	info, ok := a.types.Lookup(obj.Type())
	if !ok {
		return obj
	}
	out := obj.Named(obj.Name()).(*definition.ObjectDefinition)
	declared := obj.ConstructorInjection()
	for _, p := range info.ConstructorParams() {
		if declared != nil {
			if _, set := declared.Parameter(p.Position); set {
				continue
			}
		}
		if p.Optional {
			continue
		}
		if entry, ok := a.types.NameOf(p.Type); ok {
			out.ConstructorParameter(p.Position, definition.Get(entry))
		}
	}
	return out
}
