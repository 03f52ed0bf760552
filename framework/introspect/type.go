package introspect

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/km-arc/go-container/framework/errors"
)

// Parameter describes one constructor or method parameter.
type Parameter struct {
	Name     string
	Type     reflect.Type
	Position int
	Optional bool
	Default  any
}

// TypeInfo is what the container knows about a registered type.
type TypeInfo struct {
	name        string
	typ         reflect.Type
	constructor reflect.Value
	ctorParams  []Parameter

	ctorNames      []string
	ctorDefaults   map[string]any
	methodNames    map[string][]string
	methodDefaults map[string]map[string]any
}

func (t *TypeInfo) Name() string       { return t.name }
func (t *TypeInfo) Type() reflect.Type { return t.typ }

// Instantiable is false for interfaces registered without a constructor.
func (t *TypeInfo) Instantiable() bool {
	if t.constructor.IsValid() {
		return true
	}
	return t.typ.Kind() == reflect.Pointer && t.typ.Elem().Kind() == reflect.Struct
}

// ConstructorLabel names the constructor in error messages.
func (t *TypeInfo) ConstructorLabel() string {
	return t.name + " constructor"
}

// MethodLabel names a method in error messages.
func (t *TypeInfo) MethodLabel(method string) string {
	return fmt.Sprintf("%s.%s()", t.name, method)
}

// ConstructorParams returns a copy of the constructor parameters.
func (t *TypeInfo) ConstructorParams() []Parameter {
	return append([]Parameter(nil), t.ctorParams...)
}

// Instantiate calls the constructor with args, one per constructor parameter.
func (t *TypeInfo) Instantiate(args []any) (any, error) {
	if !t.constructor.IsValid() {
		if !t.Instantiable() {
			return nil, errors.Errorf("type %s is not instantiable", t.name)
		}
		return reflect.New(t.typ.Elem()).Interface(), nil
	}
	return call(t.constructor, t.ctorParams, args, t.ConstructorLabel())
}

// MethodParams returns the parameters of method as bound on instance.
func (t *TypeInfo) MethodParams(instance any, method string) ([]Parameter, error) {
	mv, err := boundMethod(instance, method, t.name)
	if err != nil {
		return nil, err
	}
	params := funcParams(mv)
	return t.nameMethodParams(method, params), nil
}

// StaticMethodParams is MethodParams looked up on the registered type,
// without an instance.
func (t *TypeInfo) StaticMethodParams(method string) ([]Parameter, error) {
	m, ok := t.typ.MethodByName(method)
	if !ok {
		return nil, errors.Errorf("type %s has no method %s", t.name, method)
	}
	if m.Type.IsVariadic() {
		return nil, errors.Errorf("variadic method %s.%s is not supported", t.name, method)
	}
	receiver := 1
	if t.typ.Kind() == reflect.Interface {
		receiver = 0
	}
	params := make([]Parameter, m.Type.NumIn()-receiver)
	for i := range params {
		params[i] = Parameter{Name: fmt.Sprintf("arg%d", i), Type: m.Type.In(i + receiver), Position: i}
	}
	return t.nameMethodParams(method, params), nil
}

// CallMethod invokes method on instance. A trailing non-nil error result is returned.
func (t *TypeInfo) CallMethod(instance any, method string, args []any) error {
	mv, err := boundMethod(instance, method, t.name)
	if err != nil {
		return err
	}
	params := t.nameMethodParams(method, funcParams(mv))
	_, err = call(mv, params, args, t.MethodLabel(method))
	return err
}

// SetProperty assigns value to the named struct field of instance, even an
// unexported one. instance must be a pointer to struct.
func (t *TypeInfo) SetProperty(instance any, property string, value any) error {
	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("cannot inject property %s: %T is not a pointer to struct", property, instance)
	}
	field := rv.Elem().FieldByName(property)
	if !field.IsValid() {
		return errors.Errorf("type %s has no property %s", t.name, property)
	}
	if !field.CanSet() {
		field = reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem()
	}
	v, err := Convert(value, field.Type())
	if err != nil {
		return errors.Wrapf(err, "property %s.%s", t.name, property)
	}
	field.Set(v)
	return nil
}

func (t *TypeInfo) nameMethodParams(method string, params []Parameter) []Parameter {
	names := t.methodNames[method]
	defaults := t.methodDefaults[method]
	for i := range params {
		if i < len(names) {
			params[i].Name = names[i]
		}
		if v, ok := defaults[params[i].Name]; ok {
			params[i].Optional = true
			params[i].Default = v
		}
	}
	return params
}

func boundMethod(instance any, method, typeName string) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, errors.Errorf("cannot call %s on a nil %s", method, typeName)
	}
	mv := reflect.ValueOf(instance).MethodByName(method)
	if !mv.IsValid() {
		return reflect.Value{}, errors.Errorf("type %s has no method %s", typeName, method)
	}
	if mv.Type().IsVariadic() {
		return reflect.Value{}, errors.Errorf("variadic method %s.%s is not supported", typeName, method)
	}
	return mv, nil
}

func call(fn reflect.Value, params []Parameter, args []any, label string) (any, error) {
	if len(args) != len(params) {
		return nil, errors.Errorf("%s expects %d arguments, got %d", label, len(params), len(args))
	}
	in := make([]reflect.Value, len(params))
	for i, p := range params {
		v, err := Convert(args[i], p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s of %s", p.Name, label)
		}
		in[i] = v
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && fn.Type().Out(n-1) == errorType {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
