package introspect

import (
	"github.com/km-arc/go-container/framework/errors"
)

// Option adds metadata reflection cannot recover.
type Option func(*TypeInfo)

// Params names the constructor parameters in order. Unnamed parameters are
// called arg0, arg1, ...
func Params(names ...string) Option {
	return func(t *TypeInfo) { t.ctorNames = names }
}

// Default makes a constructor parameter optional with the given value.
func Default(param string, value any) Option {
	return func(t *TypeInfo) { t.ctorDefaults[param] = value }
}

// MethodParams names the parameters of method.
func MethodParams(method string, names ...string) Option {
	return func(t *TypeInfo) { t.methodNames[method] = names }
}

// MethodDefault makes a method parameter optional with the given value.
func MethodDefault(method, param string, value any) Option {
	return func(t *TypeInfo) {
		if t.methodDefaults[method] == nil {
			t.methodDefaults[method] = make(map[string]any)
		}
		t.methodDefaults[method][param] = value
	}
}

func namedParams(params []Parameter, names []string, defaults map[string]any) ([]Parameter, error) {
	if len(names) > len(params) {
		return nil, errors.Errorf("%d parameter names given for %d parameters", len(names), len(params))
	}
	for i, name := range names {
		params[i].Name = name
	}
	used := 0
	for i := range params {
		if v, ok := defaults[params[i].Name]; ok {
			params[i].Optional = true
			params[i].Default = v
			used++
		}
	}
	if used != len(defaults) {
		return nil, errors.Errorf("default given for an unknown parameter")
	}
	return params, nil
}
