package resolver

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
)

// ObjectResolver builds instances of registered types.
//
// Each constructor or method parameter takes, in order: the override passed
// by name, the value declared at its position, its declared default. A
// parameter left without any is a DefinitionError. Lazy definitions return a
// proxy that runs construction and injection on first use.
type ObjectResolver struct {
	d *Dispatcher
}

func (r *ObjectResolver) Resolve(def definition.Definition, params map[string]any) (any, error) {
	obj := def.(*definition.ObjectDefinition)
	info, err := r.typeOf(obj)
	if err != nil {
		return nil, err
	}

	if obj.IsLazy() {
		r.d.logger.Debug("creating lazy proxy",
			zap.String("entry", obj.Name()),
			zap.String("type", obj.Type()))
		return r.d.proxies.CreateProxy(obj.Type(), func() (any, error) {
			return r.create(obj, info, params)
		})
	}
	return r.create(obj, info, params)
}

// IsResolvable reports whether the type is registered and instantiable.
func (r *ObjectResolver) IsResolvable(def definition.Definition, _ map[string]any) bool {
	info, ok := r.d.types.Lookup(def.(*definition.ObjectDefinition).Type())
	return ok && info.Instantiable()
}

func (r *ObjectResolver) typeOf(obj *definition.ObjectDefinition) (*introspect.TypeInfo, error) {
	info, ok := r.d.types.Lookup(obj.Type())
	if !ok {
		return nil, errors.InvalidDefinition(entryOf(obj), "type %s does not exist", obj.Type())
	}
	if !info.Instantiable() {
		return nil, errors.InvalidDefinition(entryOf(obj), "type %s is not instantiable", obj.Type())
	}
	return info, nil
}

func (r *ObjectResolver) create(obj *definition.ObjectDefinition, info *introspect.TypeInfo, params map[string]any) (any, error) {
	args, err := r.arguments(obj, info.ConstructorParams(), obj.ConstructorInjection(), params, info.ConstructorLabel())
	if err != nil {
		return nil, err
	}
	instance, err := info.Instantiate(args)
	if err != nil {
		return nil, errors.DefinitionFailed(err, entryOf(obj), "creating %s", obj.Type())
	}
	if err := r.inject(obj, info, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// inject applies property injections, then method calls in declaration order.
func (r *ObjectResolver) inject(obj *definition.ObjectDefinition, info *introspect.TypeInfo, instance any) error {
	for _, p := range obj.PropertyInjections() {
		v, err := r.d.ResolveNested(p.Value)
		if err != nil {
			return errors.Dependency(err, "%s property %s", entryOf(obj), p.Property)
		}
		if err := info.SetProperty(instance, p.Property, v); err != nil {
			return errors.DefinitionFailed(err, entryOf(obj), "injecting property %s", p.Property)
		}
	}

	for _, call := range obj.MethodInjections() {
		params, err := info.MethodParams(instance, call.Method())
		if err != nil {
			return errors.DefinitionFailed(err, entryOf(obj), "injecting method %s", call.Method())
		}
		args, err := r.arguments(obj, params, call, nil, info.MethodLabel(call.Method()))
		if err != nil {
			return err
		}
		if err := info.CallMethod(instance, call.Method(), args); err != nil {
			return errors.DefinitionFailed(err, entryOf(obj), "calling %s", info.MethodLabel(call.Method()))
		}
	}
	return nil
}

func (r *ObjectResolver) arguments(obj *definition.ObjectDefinition, params []introspect.Parameter, declared *definition.MethodInjection, overrides map[string]any, function string) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		value, ok := overrides[p.Name]
		if !ok && declared != nil {
			value, ok = declared.Parameter(p.Position)
		}
		if !ok {
			if !p.Optional {
				return nil, errors.InvalidDefinition(entryOf(obj), "Parameter %s of %s has no value defined or guessable", p.Name, function)
			}
			value = p.Default
		}

		resolved, err := r.d.ResolveNested(value)
		if err != nil {
			return nil, errors.Dependency(err, "%s parameter %s of %s", entryOf(obj), p.Name, function)
		}
		args[i] = resolved
	}
	return args, nil
}

// entryOf names an object definition in errors; inline definitions have no name.
func entryOf(obj *definition.ObjectDefinition) string {
	if obj.Name() != "" {
		return obj.Name()
	}
	return obj.Type()
}

// InstanceResolver injects properties and methods into an existing object.
type InstanceResolver struct {
	objects *ObjectResolver
}

func (r *InstanceResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	inst := def.(*definition.InstanceDefinition)
	instance := inst.Instance()
	if instance == nil {
		return nil, errors.InvalidDefinition("", "cannot inject into a nil instance")
	}
	obj := inst.ObjectDefinition()
	if obj == nil {
		obj = definition.Create(introspect.TypeKey(reflect.TypeOf(instance)))
	}
	if err := r.objects.inject(obj, r.objects.d.types.For(instance), instance); err != nil {
		return nil, err
	}
	return instance, nil
}

func (r *InstanceResolver) IsResolvable(def definition.Definition, _ map[string]any) bool {
	return def.(*definition.InstanceDefinition).Instance() != nil
}
