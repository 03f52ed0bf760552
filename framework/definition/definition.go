// Package definition holds the declarative recipes the container resolves.
//
// Definitions are value objects. Builder methods (Property, Method, Lazy...)
// are meant for configuration time; everything the container does with a
// definition afterwards (naming, merging, linking) returns a new value and
// leaves its inputs untouched.
package definition

// Scope decides whether a resolved value is cached by the container.
type Scope string

const (
	// Singleton values are resolved once and cached.
	Singleton Scope = "singleton"
	// Prototype values are resolved on every request.
	Prototype Scope = "prototype"
)

// Definition is a recipe for producing the value of an entry.
type Definition interface {
	// Name is the entry the definition is registered under, "" for nested definitions.
	Name() string
	Scope() Scope
	// Named returns a copy registered under name.
	Named(name string) Definition
}

// ExtendsPrevious is implemented by definitions that build on the definition
// registered before them under the same name (decorators, array additions).
type ExtendsPrevious interface {
	Definition
	Extended() Definition
	WithExtended(previous Definition) Definition
}

// RequestedEntry describes the entry a factory is producing. Factories that
// declare a parameter of this type receive it.
type RequestedEntry interface {
	Name() string
}

// Normalize turns a raw configuration value into a named definition.
// Definitions are renamed; anything else becomes a ValueDefinition.
func Normalize(name string, v any) Definition {
	if def, ok := v.(Definition); ok {
		return def.Named(name)
	}
	return Value(v).Named(name)
}

// LinkPrevious attaches previous at the innermost free link of def's
// extension chain. Non-extending definitions are returned as they are.
func LinkPrevious(def, previous Definition) Definition {
	ext, ok := def.(ExtendsPrevious)
	if !ok || previous == nil {
		return def
	}
	if inner := ext.Extended(); inner != nil {
		return ext.WithExtended(LinkPrevious(inner, previous))
	}
	return ext.WithExtended(previous)
}

// NeedsPrevious reports whether def's extension chain still has a free link.
func NeedsPrevious(def Definition) bool {
	ext, ok := def.(ExtendsPrevious)
	if !ok {
		return false
	}
	if inner := ext.Extended(); inner != nil {
		return NeedsPrevious(inner)
	}
	return true
}

func orDefault(s Scope) Scope {
	if s == "" {
		return Singleton
	}
	return s
}
