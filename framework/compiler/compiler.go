// Package compiler translates statically resolvable definitions ahead of
// time.
//
// Compile writes a YAML module mapping entry names to compiled nodes. Load
// reads it back and Module.Accessors turns every node into a closure with
// types looked up, arguments settled and string templates parsed once, so
// the container can serve those entries from a table instead of walking
// definitions.
//
// Compiling to a path that already exists does nothing: the module on disk
// is trusted even if the definitions have changed since. Delete the file to
// recompile. Factory, decorator and instance definitions are never compiled
// because their callables cannot be captured in a file.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/definition/source"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/introspect"
)

// Version of the module format.
const Version = 1

// Module is the compiled artifact.
type Module struct {
	Version int               `yaml:"version"`
	Entries map[string]*Entry `yaml:"entries"`
}

// Entry is a compiled top-level definition.
type Entry struct {
	Scope definition.Scope `yaml:"scope"`
	Node  *Node            `yaml:"node"`
}

// NotCompilableError explains why a definition stays on the generic path.
type NotCompilableError struct {
	Reason string
}

func (e *NotCompilableError) Error() string {
	return "not compilable: " + e.Reason
}

func notCompilable(format string, args ...any) error {
	return &NotCompilableError{Reason: fmt.Sprintf(format, args...)}
}

// Compiler writes compiled modules.
type Compiler struct {
	types  *introspect.Registry
	logger *zap.Logger
}

// New creates a compiler. types is used to settle constructor and method
// arguments of object definitions.
func New(types *introspect.Registry, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{types: types, logger: logger}
}

// Compile writes the compilable definitions of src to path. It reports
// whether a module was written; an existing file is left untouched.
func (c *Compiler) Compile(src source.Lister, path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("compiled container exists, skipping compilation", zap.String("path", path))
		return false, nil
	}

	module, err := c.Build(src)
	if err != nil {
		return false, err
	}
	out, err := yaml.Marshal(module)
	if err != nil {
		return false, errors.Wrap(err, "encoding compiled container")
	}
	if err := writeAtomic(path, out); err != nil {
		return false, err
	}

	c.logger.Info("compiled container written",
		zap.String("path", path),
		zap.Int("entries", len(module.Entries)))
	return true, nil
}

// Build compiles src in memory.
func (c *Compiler) Build(src source.Lister) (*Module, error) {
	defs, err := src.Definitions()
	if err != nil {
		return nil, err
	}

	module := &Module{Version: Version, Entries: make(map[string]*Entry, len(defs))}
	names := lo.Keys(defs)
	for _, name := range names {
		def := defs[name]
		node, err := c.compile(def)
		var nc *NotCompilableError
		if errors.As(err, &nc) {
			c.logger.Debug("definition left to the generic resolver",
				zap.String("entry", name),
				zap.String("reason", nc.Reason))
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "compiling '%s'", name)
		}
		module.Entries[name] = &Entry{Scope: def.Scope(), Node: node}
	}
	return module, nil
}

// compileValue compiles a nested value: a definition or a literal.
func (c *Compiler) compileValue(v any) (*Node, error) {
	if def, ok := v.(definition.Definition); ok {
		return c.compile(def)
	}
	lit, err := EncodeLiteral(v)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindValue, Value: lit}, nil
}

func (c *Compiler) compile(def definition.Definition) (*Node, error) {
	switch d := def.(type) {
	case *definition.ValueDefinition:
		lit, err := EncodeLiteral(d.Value())
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindValue, Value: lit}, nil

	case *definition.AliasDefinition:
		return &Node{Kind: KindAlias, Target: d.Target()}, nil

	case *definition.Reference:
		return &Node{Kind: KindAlias, Target: d.Target()}, nil

	case *definition.StringDefinition:
		return &Node{Kind: KindString, Template: d.Expression()}, nil

	case *definition.EnvDefinition:
		node := &Node{Kind: KindEnv, Variable: d.Variable(), Optional: d.IsOptional()}
		if d.IsOptional() {
			fallback, err := c.compileValue(d.Default())
			if err != nil {
				return nil, err
			}
			node.Default = fallback
		}
		return node, nil

	case *definition.ArrayExtension:
		merged, err := d.Merged()
		if err != nil {
			return nil, notCompilable("%v", err)
		}
		return c.compile(merged)

	case *definition.ArrayDefinition:
		node := &Node{Kind: KindArray, Keyed: d.Keyed()}
		for _, e := range d.Entries() {
			elem, err := c.compileValue(e.Value)
			if err != nil {
				return nil, err
			}
			node.Elements = append(node.Elements, Element{Key: e.Key, Node: elem})
		}
		return node, nil

	case *definition.ObjectDefinition:
		return c.compileObject(d)
	}
	return nil, notCompilable("%T", def)
}

func (c *Compiler) compileObject(obj *definition.ObjectDefinition) (*Node, error) {
	info, ok := c.types.Lookup(obj.Type())
	if !ok || !info.Instantiable() {
		return nil, notCompilable("type %s is not registered or not instantiable", obj.Type())
	}
	node := &Node{Kind: KindObject, Type: obj.Type(), Lazy: obj.IsLazy()}

	args, err := c.compileArgs(info.ConstructorParams(), obj.ConstructorInjection())
	if err != nil {
		return nil, err
	}
	node.Args = args

	for _, p := range obj.PropertyInjections() {
		value, err := c.compileValue(p.Value)
		if err != nil {
			return nil, err
		}
		node.Properties = append(node.Properties, Property{Name: p.Property, Node: value})
	}

	for _, call := range obj.MethodInjections() {
		params, err := info.StaticMethodParams(call.Method())
		if err != nil {
			return nil, notCompilable("%v", err)
		}
		args, err := c.compileArgs(params, call)
		if err != nil {
			return nil, err
		}
		node.Calls = append(node.Calls, Call{Method: call.Method(), Args: args})
	}
	return node, nil
}

// compileArgs settles every parameter to its declared value or default.
// A parameter with neither is left for the generic path to report.
func (c *Compiler) compileArgs(params []introspect.Parameter, declared *definition.MethodInjection) ([]Argument, error) {
	args := make([]Argument, 0, len(params))
	for _, p := range params {
		var (
			value any
			ok    bool
		)
		if declared != nil {
			value, ok = declared.Parameter(p.Position)
		}
		if !ok {
			if !p.Optional {
				return nil, notCompilable("parameter %s has no value", p.Name)
			}
			value = p.Default
		}
		node, err := c.compileValue(value)
		if err != nil {
			return nil, err
		}
		args = append(args, Argument{Name: p.Name, Node: node})
	}
	return args, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating compiled container")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing compiled container")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing compiled container")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "moving compiled container in place")
}

// Load reads a compiled module.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading compiled container %s", path)
	}
	var module Module
	if err := yaml.Unmarshal(data, &module); err != nil {
		return nil, errors.Wrapf(err, "decoding compiled container %s", path)
	}
	if module.Version != Version {
		return nil, errors.Errorf("compiled container %s has version %d, want %d", path, module.Version, Version)
	}
	return &module, nil
}
