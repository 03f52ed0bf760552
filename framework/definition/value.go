package definition

// ValueDefinition is a literal returned as-is.
type ValueDefinition struct {
	name  string
	value any
}

func (d *ValueDefinition) Name() string { return d.name }
func (d *ValueDefinition) Scope() Scope { return Singleton }
func (d *ValueDefinition) Value() any   { return d.value }

func (d *ValueDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

// AliasDefinition makes an entry point at another one. It is never cached
// itself: the target's scope decides.
type AliasDefinition struct {
	name   string
	target string
}

func (d *AliasDefinition) Name() string   { return d.name }
func (d *AliasDefinition) Scope() Scope   { return Prototype }
func (d *AliasDefinition) Target() string { return d.target }

func (d *AliasDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

// Reference points at another entry from inside a parameter, property,
// array element or env default. Registered at the top level it becomes an alias.
type Reference struct {
	target string
}

func (r *Reference) Name() string   { return "" }
func (r *Reference) Scope() Scope   { return Prototype }
func (r *Reference) Target() string { return r.target }

func (r *Reference) Named(name string) Definition {
	return &AliasDefinition{name: name, target: r.target}
}
