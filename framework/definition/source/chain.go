package source

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// Chain queries its sources in order; the first that knows a name wins.
//
// Definitions leave the chain ready to resolve: decorators and array
// additions are linked to the definition of the same name found further
// down the chain, array additions are flattened, object definitions are
// merged with their named parent and completed by autowiring.
type Chain struct {
	mutable    Mutable
	sources    []Source
	autowiring *Autowiring
}

// NewChain creates a chain over sources, in priority order.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// SetMutable puts m in front of every other source.
func (c *Chain) SetMutable(m Mutable) {
	c.mutable = m
}

// SetAutowiring completes autowired definitions with a, and queries a last.
func (c *Chain) SetAutowiring(a *Autowiring) {
	c.autowiring = a
}

// IsMutable reports whether AddDefinition can succeed.
func (c *Chain) IsMutable() bool {
	return c.mutable != nil
}

// AddDefinition stores def in the mutable source.
func (c *Chain) AddDefinition(def definition.Definition) error {
	if c.mutable == nil {
		return errors.Configuration("the definition source is not mutable, cannot add '%s'", def.Name())
	}
	return c.mutable.AddDefinition(def)
}

func (c *Chain) GetDefinition(name string) (definition.Definition, error) {
	return c.find(name, 0, nil)
}

// Definitions returns the effective definition of every name a Lister
// source in the chain knows.
func (c *Chain) Definitions() (map[string]definition.Definition, error) {
	var names []string
	for _, src := range c.all() {
		lister, ok := src.(Lister)
		if !ok {
			continue
		}
		defs, err := lister.Definitions()
		if err != nil {
			return nil, err
		}
		names = append(names, lo.Keys(defs)...)
	}

	out := make(map[string]definition.Definition)
	for _, name := range lo.Uniq(names) {
		def, err := c.GetDefinition(name)
		if err != nil {
			return nil, err
		}
		out[name] = def
	}
	return out, nil
}

func (c *Chain) all() []Source {
	all := make([]Source, 0, len(c.sources)+2)
	if c.mutable != nil {
		all = append(all, c.mutable)
	}
	all = append(all, c.sources...)
	if c.autowiring != nil {
		all = append(all, c.autowiring)
	}
	return all
}

// find looks name up starting at source index from. parents holds the
// entries whose parent lookup led here.
func (c *Chain) find(name string, from int, parents []string) (definition.Definition, error) {
	all := c.all()
	for i := from; i < len(all); i++ {
		def, err := all[i].GetDefinition(name)
		if err != nil {
			return nil, errors.Wrapf(err, "looking up definition '%s'", name)
		}
		if def == nil {
			continue
		}
		if definition.NeedsPrevious(def) {
			previous, err := c.find(name, i+1, parents)
			if err != nil {
				return nil, err
			}
			def = definition.LinkPrevious(def, previous)
		}
		return c.complete(def, parents)
	}
	return nil, nil
}

func (c *Chain) complete(def definition.Definition, parents []string) (definition.Definition, error) {
	switch d := def.(type) {
	case *definition.ObjectDefinition:
		if d.ParentName() != "" {
			merged, err := c.mergeParent(d, parents)
			if err != nil {
				return nil, err
			}
			d = merged
		}
		if d.IsAutowired() && c.autowiring != nil {
			d = c.autowiring.Complete(d)
		}
		return d, nil

	case *definition.ArrayExtension:
		merged, err := d.Merged()
		if err != nil {
			return nil, errors.InvalidDefinition(d.Name(), "%v", err)
		}
		return merged, nil

	case *definition.DecoratorDefinition:
		if d.Extended() == nil {
			return d, nil
		}
		inner, err := c.complete(d.Extended(), parents)
		if err != nil {
			return nil, err
		}
		return d.WithExtended(inner), nil
	}
	return def, nil
}

func (c *Chain) mergeParent(obj *definition.ObjectDefinition, parents []string) (*definition.ObjectDefinition, error) {
	parentName := obj.ParentName()
	if slices.Contains(parents, parentName) {
		return nil, errors.InvalidDefinition(obj.Name(), "definition extends itself through %s",
			strings.Join(append(parents, parentName), " -> "))
	}

	parent, err := c.find(parentName, 0, append(slices.Clone(parents), obj.Name()))
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errors.InvalidDefinition(obj.Name(), "parent definition '%s' does not exist", parentName)
	}
	parentObj, ok := parent.(*definition.ObjectDefinition)
	if !ok {
		return nil, errors.InvalidDefinition(obj.Name(), "parent definition '%s' is not an object definition", parentName)
	}
	return obj.Merge(parentObj), nil
}
