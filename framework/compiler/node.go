package compiler

import (
	"sort"
	"strconv"

	"github.com/km-arc/go-container/framework/errors"
)

// Node kinds.
const (
	KindValue  = "value"
	KindAlias  = "alias"
	KindString = "string"
	KindEnv    = "env"
	KindArray  = "array"
	KindObject = "object"
)

// Node is one compiled definition. Only the fields of its Kind are set.
type Node struct {
	Kind string `yaml:"kind"`

	Value *Literal `yaml:"value,omitempty"`

	// alias
	Target string `yaml:"target,omitempty"`

	// string
	Template string `yaml:"template,omitempty"`

	// env
	Variable string `yaml:"variable,omitempty"`
	Optional bool   `yaml:"optional,omitempty"`
	Default  *Node  `yaml:"default,omitempty"`

	// array
	Keyed    bool      `yaml:"keyed,omitempty"`
	Elements []Element `yaml:"elements,omitempty"`

	// object
	Type       string     `yaml:"type,omitempty"`
	Lazy       bool       `yaml:"lazy,omitempty"`
	Args       []Argument `yaml:"args,omitempty"`
	Properties []Property `yaml:"properties,omitempty"`
	Calls      []Call     `yaml:"calls,omitempty"`
}

type Element struct {
	Key  string `yaml:"key"`
	Node *Node  `yaml:"node"`
}

// Argument is a constructor or method argument with its value settled at
// compile time.
type Argument struct {
	Name string `yaml:"name"`
	Node *Node  `yaml:"node"`
}

type Property struct {
	Name string `yaml:"name"`
	Node *Node  `yaml:"node"`
}

type Call struct {
	Method string     `yaml:"method"`
	Args   []Argument `yaml:"args,omitempty"`
}

// Literal is a type-tagged value, so that what was compiled decodes to the
// same Go type.
type Literal struct {
	Type  string     `yaml:"type"`
	Value string     `yaml:"value,omitempty"`
	Items []*Literal `yaml:"items,omitempty"`
	Keys  []string   `yaml:"keys,omitempty"`
}

const (
	litNil     = "nil"
	litString  = "string"
	litBool    = "bool"
	litInt     = "int"
	litInt64   = "int64"
	litFloat   = "float64"
	litList    = "list"
	litStrings = "strings"
	litMap     = "map"
)

// EncodeLiteral tags v. Types outside the supported set are not compilable.
func EncodeLiteral(v any) (*Literal, error) {
	switch x := v.(type) {
	case nil:
		return &Literal{Type: litNil}, nil
	case string:
		return &Literal{Type: litString, Value: x}, nil
	case bool:
		return &Literal{Type: litBool, Value: strconv.FormatBool(x)}, nil
	case int:
		return &Literal{Type: litInt, Value: strconv.Itoa(x)}, nil
	case int64:
		return &Literal{Type: litInt64, Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		return &Literal{Type: litFloat, Value: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case []string:
		lit := &Literal{Type: litStrings}
		for _, s := range x {
			lit.Items = append(lit.Items, &Literal{Type: litString, Value: s})
		}
		return lit, nil
	case []any:
		lit := &Literal{Type: litList}
		for i, item := range x {
			encoded, err := EncodeLiteral(item)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			lit.Items = append(lit.Items, encoded)
		}
		return lit, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lit := &Literal{Type: litMap, Keys: keys}
		for _, k := range keys {
			encoded, err := EncodeLiteral(x[k])
			if err != nil {
				return nil, errors.Wrapf(err, "key %s", k)
			}
			lit.Items = append(lit.Items, encoded)
		}
		return lit, nil
	}
	return nil, notCompilable("literal of type %T", v)
}

// Decode rebuilds the Go value.
func (l *Literal) Decode() (any, error) {
	switch l.Type {
	case litNil:
		return nil, nil
	case litString:
		return l.Value, nil
	case litBool:
		return strconv.ParseBool(l.Value)
	case litInt:
		return strconv.Atoi(l.Value)
	case litInt64:
		return strconv.ParseInt(l.Value, 10, 64)
	case litFloat:
		return strconv.ParseFloat(l.Value, 64)
	case litStrings:
		out := make([]string, len(l.Items))
		for i, item := range l.Items {
			out[i] = item.Value
		}
		return out, nil
	case litList:
		out := make([]any, len(l.Items))
		for i, item := range l.Items {
			v, err := item.Decode()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case litMap:
		if len(l.Keys) != len(l.Items) {
			return nil, errors.Errorf("compiled map has %d keys and %d values", len(l.Keys), len(l.Items))
		}
		out := make(map[string]any, len(l.Keys))
		for i, k := range l.Keys {
			v, err := l.Items[i].Decode()
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown compiled literal type %q", l.Type)
}
