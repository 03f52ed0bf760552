package definition

// EnvDefinition reads an environment variable. An optional variable that is
// not set resolves to Default, which may itself be a definition.
type EnvDefinition struct {
	name     string
	variable string
	optional bool
	def      any
}

func (d *EnvDefinition) Name() string     { return d.name }
func (d *EnvDefinition) Scope() Scope     { return Singleton }
func (d *EnvDefinition) Variable() string { return d.variable }
func (d *EnvDefinition) IsOptional() bool { return d.optional }
func (d *EnvDefinition) Default() any     { return d.def }

func (d *EnvDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

// StringDefinition is text with {entry} placeholders replaced by the
// resolved entries.
type StringDefinition struct {
	name       string
	expression string
}

func (d *StringDefinition) Name() string       { return d.name }
func (d *StringDefinition) Scope() Scope       { return Singleton }
func (d *StringDefinition) Expression() string { return d.expression }

func (d *StringDefinition) Named(name string) Definition {
	cp := *d
	cp.name = name
	return &cp
}

// InstanceDefinition injects properties and methods into an existing object
// instead of building a new one.
type InstanceDefinition struct {
	instance any
	object   *ObjectDefinition
}

// NewInstance pairs an object with the recipe of its type.
func NewInstance(instance any, object *ObjectDefinition) *InstanceDefinition {
	return &InstanceDefinition{instance: instance, object: object}
}

func (d *InstanceDefinition) Name() string                       { return "" }
func (d *InstanceDefinition) Scope() Scope                       { return Prototype }
func (d *InstanceDefinition) Instance() any                      { return d.instance }
func (d *InstanceDefinition) ObjectDefinition() *ObjectDefinition { return d.object }

func (d *InstanceDefinition) Named(string) Definition { return d }
