package definition

import (
	"maps"
	"slices"
)

// MethodInjection is one call to a method (or the constructor) with
// positional parameters. Positions that are not set fall back to overrides,
// declared defaults or autowiring at resolution time.
type MethodInjection struct {
	method string
	params map[int]any
}

// NewMethodInjection declares a call with params at positions 0..n-1.
func NewMethodInjection(method string, params ...any) *MethodInjection {
	m := &MethodInjection{method: method, params: make(map[int]any, len(params))}
	for i, p := range params {
		m.params[i] = p
	}
	return m
}

func (m *MethodInjection) Method() string { return m.method }

// Parameter returns the value declared at position i.
func (m *MethodInjection) Parameter(i int) (any, bool) {
	v, ok := m.params[i]
	return v, ok
}

// Parameters returns a copy of the declared positional parameters.
func (m *MethodInjection) Parameters() map[int]any {
	return maps.Clone(m.params)
}

// With returns a copy with position i set to value.
func (m *MethodInjection) With(i int, value any) *MethodInjection {
	cp := m.clone()
	cp.params[i] = value
	return cp
}

// Merge returns m completed with parent's parameters; m wins per position.
func (m *MethodInjection) Merge(parent *MethodInjection) *MethodInjection {
	cp := m.clone()
	if parent == nil {
		return cp
	}
	for i, v := range parent.params {
		if _, ok := cp.params[i]; !ok {
			cp.params[i] = v
		}
	}
	return cp
}

func (m *MethodInjection) clone() *MethodInjection {
	params := maps.Clone(m.params)
	if params == nil {
		params = make(map[int]any)
	}
	return &MethodInjection{method: m.method, params: params}
}

// PropertyInjection assigns Value to a struct field, exported or not.
type PropertyInjection struct {
	Property string
	Value    any
}

// ObjectDefinition describes how to build an instance of a registered type.
type ObjectDefinition struct {
	name        string
	typeName    string
	scope       Scope
	lazy        *bool
	autowired   bool
	parent      string
	constructor *MethodInjection
	properties  []PropertyInjection
	methods     map[string][]*MethodInjection
	methodOrder []string
}

func (d *ObjectDefinition) Name() string { return d.name }
func (d *ObjectDefinition) Scope() Scope { return orDefault(d.scope) }

func (d *ObjectDefinition) Named(name string) Definition {
	cp := d.clone()
	cp.name = name
	return cp
}

// Type is the registered type name; it defaults to the entry name.
func (d *ObjectDefinition) Type() string {
	if d.typeName != "" {
		return d.typeName
	}
	return d.name
}

func (d *ObjectDefinition) IsLazy() bool       { return d.lazy != nil && *d.lazy }
func (d *ObjectDefinition) IsAutowired() bool  { return d.autowired }
func (d *ObjectDefinition) ParentName() string { return d.parent }

func (d *ObjectDefinition) ConstructorInjection() *MethodInjection { return d.constructor }

func (d *ObjectDefinition) PropertyInjections() []PropertyInjection {
	return slices.Clone(d.properties)
}

// MethodInjections returns every queued call, grouped by method in
// declaration order.
func (d *ObjectDefinition) MethodInjections() []*MethodInjection {
	var out []*MethodInjection
	for _, method := range d.methodOrder {
		out = append(out, d.methods[method]...)
	}
	return out
}

// Calls returns the queued calls of one method.
func (d *ObjectDefinition) Calls(method string) []*MethodInjection {
	return slices.Clone(d.methods[method])
}

// ── builder ───────────────────────────────────────────────────────────────────

// Constructor sets the constructor parameters at positions 0..n-1.
func (d *ObjectDefinition) Constructor(params ...any) *ObjectDefinition {
	d.constructor = NewMethodInjection("", params...)
	return d
}

// ConstructorParameter sets one constructor position.
func (d *ObjectDefinition) ConstructorParameter(index int, value any) *ObjectDefinition {
	if d.constructor == nil {
		d.constructor = NewMethodInjection("")
	}
	d.constructor = d.constructor.With(index, value)
	return d
}

// Property queues an assignment; setting the same property twice keeps the last value.
func (d *ObjectDefinition) Property(name string, value any) *ObjectDefinition {
	for i := range d.properties {
		if d.properties[i].Property == name {
			d.properties[i].Value = value
			return d
		}
	}
	d.properties = append(d.properties, PropertyInjection{Property: name, Value: value})
	return d
}

// Method queues one more call to method.
func (d *ObjectDefinition) Method(method string, params ...any) *ObjectDefinition {
	d.addCall(method, NewMethodInjection(method, params...))
	return d
}

// MethodParameter sets position index of the call-th call to method, leaving
// other calls to the same method alone. Missing calls are created empty.
func (d *ObjectDefinition) MethodParameter(method string, call, index int, value any) *ObjectDefinition {
	for len(d.methods[method]) <= call {
		d.addCall(method, NewMethodInjection(method))
	}
	d.methods[method][call] = d.methods[method][call].With(index, value)
	return d
}

func (d *ObjectDefinition) Lazy() *ObjectDefinition {
	lazy := true
	d.lazy = &lazy
	return d
}

// Eager undoes a lazy flag inherited from a parent.
func (d *ObjectDefinition) Eager() *ObjectDefinition {
	lazy := false
	d.lazy = &lazy
	return d
}

func (d *ObjectDefinition) InScope(scope Scope) *ObjectDefinition {
	d.scope = scope
	return d
}

// Extends merges the named parent definition under this one when the
// definition is looked up.
func (d *ObjectDefinition) Extends(parent string) *ObjectDefinition {
	d.parent = parent
	return d
}

func (d *ObjectDefinition) addCall(method string, call *MethodInjection) {
	if d.methods == nil {
		d.methods = make(map[string][]*MethodInjection)
	}
	if _, seen := d.methods[method]; !seen {
		d.methodOrder = append(d.methodOrder, method)
	}
	d.methods[method] = append(d.methods[method], call)
}

// ── merge ─────────────────────────────────────────────────────────────────────

// Merge returns a new definition where d's explicit settings win over
// parent's. Properties merge by name, methods by name then call index,
// parameters by position. Neither input is modified.
func (d *ObjectDefinition) Merge(parent *ObjectDefinition) *ObjectDefinition {
	out := d.clone()
	out.parent = ""
	if parent == nil {
		return out
	}

	if out.typeName == "" {
		out.typeName = parent.Type()
	}
	if out.scope == "" {
		out.scope = parent.scope
	}
	if out.lazy == nil && parent.lazy != nil {
		lazy := *parent.lazy
		out.lazy = &lazy
	}
	out.autowired = out.autowired || parent.autowired

	switch {
	case out.constructor == nil && parent.constructor != nil:
		out.constructor = parent.constructor.clone()
	case out.constructor != nil:
		out.constructor = out.constructor.Merge(parent.constructor)
	}

	for _, p := range parent.properties {
		if !slices.ContainsFunc(out.properties, func(own PropertyInjection) bool { return own.Property == p.Property }) {
			out.properties = append(out.properties, p)
		}
	}

	for _, method := range parent.methodOrder {
		parentCalls := parent.methods[method]
		for i, call := range parentCalls {
			own := out.methods[method]
			if i < len(own) {
				own[i] = own[i].Merge(call)
				continue
			}
			out.addCall(method, call.clone())
		}
	}

	return out
}

func (d *ObjectDefinition) clone() *ObjectDefinition {
	cp := *d
	if d.lazy != nil {
		lazy := *d.lazy
		cp.lazy = &lazy
	}
	if d.constructor != nil {
		cp.constructor = d.constructor.clone()
	}
	cp.properties = slices.Clone(d.properties)
	cp.methodOrder = slices.Clone(d.methodOrder)
	cp.methods = nil
	if d.methods != nil {
		cp.methods = make(map[string][]*MethodInjection, len(d.methods))
		for method, calls := range d.methods {
			cloned := make([]*MethodInjection, len(calls))
			for i, call := range calls {
				cloned[i] = call.clone()
			}
			cp.methods[method] = cloned
		}
	}
	return &cp
}
