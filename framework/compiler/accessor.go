package compiler

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
	"github.com/km-arc/go-container/framework/proxy"
	"github.com/km-arc/go-container/framework/resolver"
)

// Runtime is what compiled accessors need from the container.
type Runtime interface {
	Get(name string) (any, error)
	LookupEnv(name string) (string, bool)
	Types() *introspect.Registry
	Proxies() proxy.Factory
}

// Accessor produces the value of one compiled entry.
type Accessor struct {
	Scope definition.Scope
	Get   func() (any, error)
}

// Accessors builds the accessor table of m against rt.
func (m *Module) Accessors(rt Runtime) (map[string]Accessor, error) {
	table := make(map[string]Accessor, len(m.Entries))
	for name, entry := range m.Entries {
		get, err := build(rt, entry.Node, name)
		if err != nil {
			return nil, errors.Wrapf(err, "loading compiled entry '%s'", name)
		}
		table[name] = Accessor{Scope: entry.Scope, Get: get}
	}
	return table, nil
}

type getter = func() (any, error)

// build specialises node into a closure. owner names the top-level entry in errors.
func build(rt Runtime, node *Node, owner string) (getter, error) {
	if node == nil {
		return nil, errors.New("missing node")
	}
	switch node.Kind {
	case KindValue:
		if node.Value == nil {
			return nil, errors.New("value node without literal")
		}
		v, err := node.Value.Decode()
		if err != nil {
			return nil, err
		}
		return func() (any, error) { return v, nil }, nil

	case KindAlias:
		target := node.Target
		return func() (any, error) { return rt.Get(target) }, nil

	case KindString:
		tpl := resolver.ParseTemplate(node.Template)
		return func() (any, error) { return tpl.Expand(rt.Get, owner) }, nil

	case KindEnv:
		return buildEnv(rt, node, owner)

	case KindArray:
		return buildArray(rt, node, owner)

	case KindObject:
		return buildObject(rt, node, owner)
	}
	return nil, errors.Errorf("unknown compiled node kind %q", node.Kind)
}

func buildEnv(rt Runtime, node *Node, owner string) (getter, error) {
	variable, optional := node.Variable, node.Optional
	var fallback getter
	if optional {
		var err error
		if fallback, err = build(rt, node.Default, owner); err != nil {
			return nil, err
		}
	}
	return func() (any, error) {
		if v, ok := rt.LookupEnv(variable); ok {
			return v, nil
		}
		if !optional {
			return nil, errors.InvalidDefinition(owner, "the environment variable '%s' has not been defined", variable)
		}
		v, err := fallback()
		if err != nil {
			return nil, errors.Dependency(err, "default value of environment variable '%s'", variable)
		}
		return v, nil
	}, nil
}

func buildArray(rt Runtime, node *Node, owner string) (getter, error) {
	keys := make([]string, len(node.Elements))
	elems := make([]getter, len(node.Elements))
	for i, e := range node.Elements {
		get, err := build(rt, e.Node, owner)
		if err != nil {
			return nil, err
		}
		keys[i], elems[i] = e.Key, get
	}

	if node.Keyed {
		return func() (any, error) {
			out := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(elems)))
			for i, get := range elems {
				v, err := get()
				if err != nil {
					return nil, errors.Dependency(err, "%s[%s]", owner, keys[i])
				}
				out.Set(keys[i], v)
			}
			return out, nil
		}, nil
	}
	return func() (any, error) {
		out := make([]any, len(elems))
		for i, get := range elems {
			v, err := get()
			if err != nil {
				return nil, errors.Dependency(err, "%s[%s]", owner, keys[i])
			}
			out[i] = v
		}
		return out, nil
	}, nil
}

type compiledArgs struct {
	names []string
	gets  []getter
}

func buildArgs(rt Runtime, args []Argument, owner string) (compiledArgs, error) {
	out := compiledArgs{names: make([]string, len(args)), gets: make([]getter, len(args))}
	for i, a := range args {
		get, err := build(rt, a.Node, owner)
		if err != nil {
			return out, err
		}
		out.names[i], out.gets[i] = a.Name, get
	}
	return out, nil
}

func (a compiledArgs) values(owner, function string) ([]any, error) {
	values := make([]any, len(a.gets))
	for i, get := range a.gets {
		v, err := get()
		if err != nil {
			return nil, errors.Dependency(err, "%s parameter %s of %s", owner, a.names[i], function)
		}
		values[i] = v
	}
	return values, nil
}

func buildObject(rt Runtime, node *Node, owner string) (getter, error) {
	typeName := node.Type
	info, ok := rt.Types().Lookup(typeName)
	if !ok || !info.Instantiable() {
		return func() (any, error) {
			return nil, errors.InvalidDefinition(owner, "type %s does not exist or is not instantiable", typeName)
		}, nil
	}

	ctor, err := buildArgs(rt, node.Args, owner)
	if err != nil {
		return nil, err
	}
	props := make([]getter, len(node.Properties))
	for i, p := range node.Properties {
		if props[i], err = build(rt, p.Node, owner); err != nil {
			return nil, err
		}
	}
	calls := make([]compiledArgs, len(node.Calls))
	for i, c := range node.Calls {
		if calls[i], err = buildArgs(rt, c.Args, owner); err != nil {
			return nil, err
		}
	}

	create := func() (any, error) {
		args, err := ctor.values(owner, info.ConstructorLabel())
		if err != nil {
			return nil, err
		}
		instance, err := info.Instantiate(args)
		if err != nil {
			return nil, errors.DefinitionFailed(err, owner, "creating %s", typeName)
		}
		for i, p := range node.Properties {
			v, err := props[i]()
			if err != nil {
				return nil, errors.Dependency(err, "%s property %s", owner, p.Name)
			}
			if err := info.SetProperty(instance, p.Name, v); err != nil {
				return nil, errors.DefinitionFailed(err, owner, "injecting property %s", p.Name)
			}
		}
		for i, c := range node.Calls {
			label := info.MethodLabel(c.Method)
			args, err := calls[i].values(owner, label)
			if err != nil {
				return nil, err
			}
			if err := info.CallMethod(instance, c.Method, args); err != nil {
				return nil, errors.DefinitionFailed(err, owner, "calling %s", label)
			}
		}
		return instance, nil
	}

	if node.Lazy {
		return func() (any, error) {
			return rt.Proxies().CreateProxy(typeName, create)
		}, nil
	}
	return create, nil
}
