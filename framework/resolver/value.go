package resolver

import (
	"github.com/km-arc/go-container/framework/definition"
)

// ValueResolver returns literals verbatim.
type ValueResolver struct{}

func (r *ValueResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	return def.(*definition.ValueDefinition).Value(), nil
}

func (r *ValueResolver) IsResolvable(definition.Definition, map[string]any) bool {
	return true
}

// AliasResolver resolves aliases and references by asking the container for
// the target, which puts the hop under the container's cycle guard.
type AliasResolver struct {
	container Container
}

func (r *AliasResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	return r.container.Get(target(def))
}

func (r *AliasResolver) IsResolvable(def definition.Definition, _ map[string]any) bool {
	return r.container.Has(target(def))
}

func target(def definition.Definition) string {
	if ref, ok := def.(*definition.Reference); ok {
		return ref.Target()
	}
	return def.(*definition.AliasDefinition).Target()
}
