package resolver

import (
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
)

// EnvResolver reads environment variables through the dispatcher's reader.
type EnvResolver struct {
	d *Dispatcher
}

func (r *EnvResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	env := def.(*definition.EnvDefinition)
	if v, ok := r.d.env.LookupEnv(env.Variable()); ok {
		return v, nil
	}
	if !env.IsOptional() {
		return nil, errors.InvalidDefinition(env.Name(), "the environment variable '%s' has not been defined", env.Variable())
	}
	v, err := r.d.ResolveNested(env.Default())
	if err != nil {
		return nil, errors.Dependency(err, "default value of environment variable '%s'", env.Variable())
	}
	return v, nil
}

func (r *EnvResolver) IsResolvable(def definition.Definition, _ map[string]any) bool {
	env := def.(*definition.EnvDefinition)
	if env.IsOptional() {
		return true
	}
	_, ok := r.d.env.LookupEnv(env.Variable())
	return ok
}

// StringResolver expands {entry} placeholders.
type StringResolver struct {
	container Container
}

func (r *StringResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	str := def.(*definition.StringDefinition)
	return ParseTemplate(str.Expression()).Expand(r.container.Get, str.Name())
}

func (r *StringResolver) IsResolvable(definition.Definition, map[string]any) bool {
	return true
}
