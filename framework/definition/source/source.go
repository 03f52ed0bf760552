// Package source provides where the container looks definitions up.
//
// A container reads through a Chain: an optional mutable Map in front (what
// Container.Set writes to), the configured sources in order, and the
// autowiring source last. The first source that knows a name wins.
package source

import (
	"github.com/km-arc/go-container/framework/definition"
)

// Source looks up definitions by entry name. An unknown name yields (nil, nil).
type Source interface {
	GetDefinition(name string) (definition.Definition, error)
}

// Mutable sources accept new definitions at runtime.
type Mutable interface {
	Source
	AddDefinition(def definition.Definition) error
}

// Lister sources can enumerate every definition they hold. The compiler
// only sees definitions of Lister sources.
type Lister interface {
	Source
	Definitions() (map[string]definition.Definition, error)
}
