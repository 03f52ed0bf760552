package definition

import (
	"slices"
	"strconv"

	"github.com/km-arc/go-container/framework/errors"
)

// ArrayEntry is one element of an array definition. Value may be a literal
// or a nested definition.
type ArrayEntry struct {
	Key   string
	Value any
}

// ArrayDefinition is an ordered composite. A list resolves to []any, a keyed
// array to an insertion-ordered map; declared order is kept either way.
type ArrayDefinition struct {
	name    string
	entries []ArrayEntry
	keyed   bool
}

func (d *ArrayDefinition) Name() string { return d.name }
func (d *ArrayDefinition) Scope() Scope { return Singleton }
func (d *ArrayDefinition) Keyed() bool  { return d.keyed }

func (d *ArrayDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	cp.entries = slices.Clone(d.entries)
	return &cp
}

// Entries returns the elements in declaration order. List keys are "0", "1", ...
func (d *ArrayDefinition) Entries() []ArrayEntry {
	return slices.Clone(d.entries)
}

// Len is the number of declared elements.
func (d *ArrayDefinition) Len() int { return len(d.entries) }

// ArrayExtension adds elements to the array registered before it under the
// same name. Lists are appended to; keyed arrays get new keys appended and
// existing keys replaced in place.
type ArrayExtension struct {
	name     string
	entries  []ArrayEntry
	keyed    bool
	extended Definition
}

func (d *ArrayExtension) Name() string         { return d.name }
func (d *ArrayExtension) Scope() Scope         { return Singleton }
func (d *ArrayExtension) Extended() Definition { return d.extended }

func (d *ArrayExtension) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

func (d *ArrayExtension) WithExtended(previous Definition) Definition {
	cp := *d
	cp.extended = previous
	return &cp
}

// Merged flattens the extension chain into a plain ArrayDefinition.
func (d *ArrayExtension) Merged() (*ArrayDefinition, error) {
	var base *ArrayDefinition
	switch prev := d.extended.(type) {
	case nil:
		base = &ArrayDefinition{keyed: d.keyed}
	case *ArrayDefinition:
		base = prev
	case *ArrayExtension:
		merged, err := prev.Merged()
		if err != nil {
			return nil, err
		}
		base = merged
	default:
		return nil, errors.Errorf("definition '%s' adds array entries but the previous definition is a %T", d.name, prev)
	}

	out := &ArrayDefinition{name: d.name, keyed: base.keyed || d.keyed, entries: slices.Clone(base.entries)}
	for _, e := range d.entries {
		if !d.keyed {
			out.entries = append(out.entries, ArrayEntry{Key: strconv.Itoa(len(out.entries)), Value: e.Value})
			continue
		}
		if i := slices.IndexFunc(out.entries, func(have ArrayEntry) bool { return have.Key == e.Key }); i >= 0 {
			out.entries[i].Value = e.Value
			continue
		}
		out.entries = append(out.entries, e)
	}
	return out, nil
}

func listEntries(values []any) []ArrayEntry {
	entries := make([]ArrayEntry, len(values))
	for i, v := range values {
		entries[i] = ArrayEntry{Key: strconv.Itoa(i), Value: v}
	}
	return entries
}
