package resolver

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
)

// FactoryResolver invokes the callable of a factory definition.
//
// Parameters of the callable are filled, in this order: by the declared
// positional parameters, with the container or the RequestedEntry when the
// parameter type fits, then by autowiring the parameter's registered type.
type FactoryResolver struct {
	d *Dispatcher
}

func (r *FactoryResolver) Resolve(def definition.Definition, _ map[string]any) (any, error) {
	f := def.(*definition.FactoryDefinition)
	fn, err := r.d.callable(f.Name(), f.Callable())
	if err != nil {
		return nil, err
	}
	return r.d.invoke(fn, invocation{
		label:    fmt.Sprintf("factory of '%s'", f.Name()),
		entry:    f.Name(),
		declared: f.Parameters(),
		provided: []any{r.d.container, requestedEntry(f.Name())},
	})
}

func (r *FactoryResolver) IsResolvable(definition.Definition, map[string]any) bool {
	return true
}

// DecoratorResolver resolves the decorated definition, then hands the value
// (nil without a previous definition) to the decorator as first argument.
type DecoratorResolver struct {
	d *Dispatcher
}

func (r *DecoratorResolver) Resolve(def definition.Definition, params map[string]any) (any, error) {
	dec := def.(*definition.DecoratorDefinition)
	fn, err := r.d.callable(dec.Name(), dec.Callable())
	if err != nil {
		return nil, err
	}

	var previous any
	if inner := dec.Extended(); inner != nil {
		previous, err = r.d.Resolve(inner, params)
		if err != nil {
			return nil, err
		}
	}

	return r.d.invoke(fn, invocation{
		label:    fmt.Sprintf("decorator of '%s'", dec.Name()),
		entry:    dec.Name(),
		fixed:    map[int]any{0: previous},
		provided: []any{r.d.container},
	})
}

func (r *DecoratorResolver) IsResolvable(def definition.Definition, params map[string]any) bool {
	if inner := def.(*definition.DecoratorDefinition).Extended(); inner != nil {
		return r.d.IsResolvable(inner, params)
	}
	return true
}

type requestedEntry string

func (e requestedEntry) Name() string { return string(e) }

type invocation struct {
	label string
	entry string
	// fixed values are passed as they are.
	fixed map[int]any
	// declared values are resolved first.
	declared map[int]any
	// provided values fill parameters their type is assignable to.
	provided []any
}

var requestedEntryType = reflect.TypeFor[definition.RequestedEntry]()

func (d *Dispatcher) callable(entry string, fn any) (reflect.Value, error) {
	if c, ok := fn.(definition.Callable); ok {
		target, err := d.container.Get(c.Entry)
		if err != nil {
			return reflect.Value{}, errors.Dependency(err, "callable %s", c)
		}
		method := reflect.ValueOf(target).MethodByName(c.Method)
		if !method.IsValid() {
			return reflect.Value{}, errors.InvalidDefinition(entry, "%s is not callable: %T has no method %s", c, target, c.Method)
		}
		fn = method.Interface()
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}, errors.InvalidDefinition(entry, "%T is not callable", fn)
	}
	if v.Type().IsVariadic() {
		return reflect.Value{}, errors.InvalidDefinition(entry, "variadic callable %T is not supported", fn)
	}
	return v, nil
}

func (d *Dispatcher) invoke(fn reflect.Value, inv invocation) (any, error) {
	ft := fn.Type()
	in := make([]reflect.Value, ft.NumIn())
	for i := range in {
		pt := ft.In(i)
		v, err := d.argument(i, pt, inv)
		if err != nil {
			return nil, err
		}
		arg, err := introspect.Convert(v, pt)
		if err != nil {
			return nil, errors.DefinitionFailed(err, inv.entry, "parameter %d of %s", i, inv.label)
		}
		in[i] = arg
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && ft.Out(n-1) == reflect.TypeFor[error]() {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, errors.Wrapf(errV.Interface().(error), "%s failed", inv.label)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func (d *Dispatcher) argument(i int, pt reflect.Type, inv invocation) (any, error) {
	if v, ok := inv.fixed[i]; ok {
		return v, nil
	}
	if v, ok := inv.declared[i]; ok {
		resolved, err := d.ResolveNested(v)
		if err != nil {
			return nil, errors.Dependency(err, "parameter %d of %s", i, inv.label)
		}
		return resolved, nil
	}
	for _, p := range inv.provided {
		if p == nil {
			continue
		}
		if _, isEntry := p.(requestedEntry); isEntry && pt != requestedEntryType {
			continue
		}
		if reflect.TypeOf(p).AssignableTo(pt) {
			return p, nil
		}
	}
	if name, ok := d.types.NameOf(pt); ok {
		v, err := d.container.Get(name)
		if err != nil {
			return nil, errors.Dependency(err, "parameter %d of %s", i, inv.label)
		}
		return v, nil
	}
	return nil, errors.InvalidDefinition(inv.entry, "Parameter %d of %s has no value defined or guessable", i, inv.label)
}
