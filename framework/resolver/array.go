package resolver

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// ArrayResolver resolves each element in declaration order. Lists become
// []any; keyed arrays become an *orderedmap.OrderedMap[string, any].
type ArrayResolver struct {
	d *Dispatcher
}

func (r *ArrayResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	arr, err := flatten(def)
	if err != nil {
		return nil, err
	}

	if arr.Keyed() {
		out := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](arr.Len()))
		for _, e := range arr.Entries() {
			v, err := r.d.ResolveNested(e.Value)
			if err != nil {
				return nil, errors.Dependency(err, "%s[%s]", arr.Name(), e.Key)
			}
			out.Set(e.Key, v)
		}
		return out, nil
	}

	out := make([]any, 0, arr.Len())
	for _, e := range arr.Entries() {
		v, err := r.d.ResolveNested(e.Value)
		if err != nil {
			return nil, errors.Dependency(err, "%s[%s]", arr.Name(), e.Key)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *ArrayResolver) IsResolvable(definition.Definition, map[string]any) bool {
	return true
}

func flatten(def definition.Definition) (*definition.ArrayDefinition, error) {
	if ext, ok := def.(*definition.ArrayExtension); ok {
		arr, err := ext.Merged()
		if err != nil {
			return nil, errors.InvalidDefinition(def.Name(), "%v", err)
		}
		return arr, nil
	}
	return def.(*definition.ArrayDefinition), nil
}
