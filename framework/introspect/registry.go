// Package introspect gives the container what Go's runtime does not: named
// types, constructor parameter names and defaults, and field assignment that
// ignores export rules.
//
// Types are registered once at build time:
//
//	types := introspect.NewRegistry()
//	introspect.MustRegister(types, "mailer.SMTP", mail.NewSMTP,
//	    introspect.Params("host", "port"),
//	    introspect.Default("port", 25))
//	introspect.MustRegisterType[mail.Sender](types, "mail.Sender") // abstract
package introspect

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/km-arc/go-container/framework/errors"
)

// Registry maps type names to their introspection data.
type Registry struct {
	byName map[string]*TypeInfo
	byType map[reflect.Type]*TypeInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*TypeInfo),
		byType: make(map[reflect.Type]*TypeInfo),
	}
}

// Register records a constructor func returning T or (T, error). The name
// defaults to TypeKey of T.
func (r *Registry) Register(name string, constructor any, opts ...Option) (*TypeInfo, error) {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return nil, errors.Errorf("introspect: constructor for %q must be a func, got %T", name, constructor)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, errors.Errorf("introspect: variadic constructor for %q is not supported", name)
	}
	if !returnsValue(ft) {
		return nil, errors.Errorf("introspect: constructor for %q must return T or (T, error)", name)
	}

	info := &TypeInfo{name: name, typ: ft.Out(0), constructor: fn}
	if info.name == "" {
		info.name = TypeKey(info.typ)
	}
	return info, r.add(info, opts)
}

// RegisterStruct records a pointer-to-struct or interface type that has no
// constructor. Pointers are built with reflect.New; interfaces are abstract.
func (r *Registry) RegisterStruct(name string, typ reflect.Type, opts ...Option) (*TypeInfo, error) {
	switch {
	case typ.Kind() == reflect.Interface:
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Struct:
	default:
		return nil, errors.Errorf("introspect: %s must be a pointer to struct or an interface", typ)
	}
	info := &TypeInfo{name: name, typ: typ}
	if info.name == "" {
		info.name = TypeKey(typ)
	}
	return info, r.add(info, opts)
}

func (r *Registry) add(info *TypeInfo, opts []Option) error {
	info.ctorDefaults = make(map[string]any)
	info.methodNames = make(map[string][]string)
	info.methodDefaults = make(map[string]map[string]any)
	for _, opt := range opts {
		opt(info)
	}
	params, err := namedParams(funcParams(info.constructor), info.ctorNames, info.ctorDefaults)
	if err != nil {
		return errors.Wrapf(err, "introspect: registering %s", info.name)
	}
	info.ctorParams = params
	if _, exists := r.byName[info.name]; exists {
		return errors.Errorf("introspect: type %q is already registered", info.name)
	}
	r.byName[info.name] = info
	if _, exists := r.byType[info.typ]; !exists {
		r.byType[info.typ] = info
	}
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	info, ok := r.byName[name]
	return info, ok
}

// NameOf returns the name of the first type registered for t.
func (r *Registry) NameOf(t reflect.Type) (string, bool) {
	info, ok := r.byType[t]
	if !ok {
		return "", false
	}
	return info.name, true
}

// For returns the info registered for the dynamic type of v, or an
// unregistered description that still supports property and method injection.
func (r *Registry) For(v any) *TypeInfo {
	t := reflect.TypeOf(v)
	if info, ok := r.byType[t]; ok {
		return info
	}
	return &TypeInfo{name: TypeKey(t), typ: t}
}

// Names lists registered type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustRegister is Register that panics, for package-level setup.
func MustRegister(r *Registry, name string, constructor any, opts ...Option) *TypeInfo {
	info, err := r.Register(name, constructor, opts...)
	if err != nil {
		panic(err)
	}
	return info
}

// RegisterType is RegisterStruct for T.
func RegisterType[T any](r *Registry, name string, opts ...Option) (*TypeInfo, error) {
	return r.RegisterStruct(name, reflect.TypeFor[T](), opts...)
}

// MustRegisterType is RegisterType that panics.
func MustRegisterType[T any](r *Registry, name string, opts ...Option) *TypeInfo {
	info, err := RegisterType[T](r, name, opts...)
	if err != nil {
		panic(err)
	}
	return info
}

// TypeKey returns the package-qualified name of t, pointer marker included,
// e.g. "*github.com/acme/mail.SMTP".
func TypeKey(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + TypeKey(t.Elem())
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

var errorType = reflect.TypeFor[error]()

func returnsValue(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(1) == errorType
	default:
		return false
	}
}

func funcParams(fn reflect.Value) []Parameter {
	if !fn.IsValid() {
		return nil
	}
	ft := fn.Type()
	params := make([]Parameter, ft.NumIn())
	for i := range params {
		params[i] = Parameter{Name: fmt.Sprintf("arg%d", i), Type: ft.In(i), Position: i}
	}
	return params
}
