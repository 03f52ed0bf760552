package source

import (
	"maps"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// Map is an in-memory source.
//
//	defs := source.NewMap(map[string]any{
//	    "app.name": "shop",
//	    "mailer":   definition.Create("*mail.SMTP"),
//	})
type Map struct {
	defs map[string]definition.Definition
}

// NewMap builds a source from raw configuration. Values that are not
// definitions become ValueDefinitions.
func NewMap(defs map[string]any) *Map {
	m := &Map{defs: make(map[string]definition.Definition, len(defs))}
	for name, v := range defs {
		m.defs[name] = definition.Normalize(name, v)
	}
	return m
}

func (m *Map) GetDefinition(name string) (definition.Definition, error) {
	return m.defs[name], nil
}

// AddDefinition stores def under its name. A decorator or array addition
// replacing a definition of this map is linked to it.
func (m *Map) AddDefinition(def definition.Definition) error {
	name := def.Name()
	if name == "" {
		return errors.Configuration("cannot add a definition without a name (%T)", def)
	}
	if previous, ok := m.defs[name]; ok {
		def = definition.LinkPrevious(def, previous)
	}
	m.defs[name] = def
	return nil
}

// Definitions returns a copy of every definition.
func (m *Map) Definitions() (map[string]definition.Definition, error) {
	return maps.Clone(m.defs), nil
}
