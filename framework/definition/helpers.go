package definition

// Helpers for writing definitions by hand.
//
//	defs := map[string]any{
//	    "db.dsn":  definition.Env("DB_DSN", "sqlite::memory:"),
//	    "db":      definition.Create("*store.DB").Constructor(definition.Get("db.dsn")),
//	    "greeting": definition.String("Hello {app.name}"),
//	    "mailer":  definition.Autowire("*mail.SMTP").Lazy(),
//	}

// Value wraps a literal.
func Value(v any) *ValueDefinition {
	return &ValueDefinition{value: v}
}

// Get references another entry.
func Get(entry string) *Reference {
	return &Reference{target: entry}
}

// Alias makes the entry resolve to target.
func Alias(target string) *AliasDefinition {
	return &AliasDefinition{target: target}
}

// Create builds an instance of a registered type. Without a type name the
// entry name is used.
func Create(typeName ...string) *ObjectDefinition {
	d := &ObjectDefinition{}
	if len(typeName) > 0 {
		d.typeName = typeName[0]
	}
	return d
}

// Autowire is Create with constructor parameters completed from the
// declared parameter types.
func Autowire(typeName ...string) *ObjectDefinition {
	d := Create(typeName...)
	d.autowired = true
	return d
}

// Factory produces the entry with fn, a func or a Callable.
func Factory(fn any) *FactoryDefinition {
	return &FactoryDefinition{factory: fn}
}

// Decorate wraps the previous definition of the entry with fn.
func Decorate(fn any) *DecoratorDefinition {
	return &DecoratorDefinition{factory: fn}
}

// Env reads variable; passing a default makes it optional.
func Env(variable string, def ...any) *EnvDefinition {
	d := &EnvDefinition{variable: variable}
	if len(def) > 0 {
		d.optional = true
		d.def = def[0]
	}
	return d
}

// String builds text from {entry} placeholders.
func String(expression string) *StringDefinition {
	return &StringDefinition{expression: expression}
}

// Array declares a list.
func Array(values ...any) *ArrayDefinition {
	return &ArrayDefinition{entries: listEntries(values)}
}

// Map declares a keyed array, kept in declaration order.
func Map(entries ...ArrayEntry) *ArrayDefinition {
	return &ArrayDefinition{entries: append([]ArrayEntry(nil), entries...), keyed: true}
}

// KV is shorthand for an ArrayEntry.
func KV(key string, value any) ArrayEntry {
	return ArrayEntry{Key: key, Value: value}
}

// Add appends values to the previous list definition of the entry.
func Add(values ...any) *ArrayExtension {
	return &ArrayExtension{entries: listEntries(values)}
}

// AddMap adds or replaces keys of the previous keyed array definition.
func AddMap(entries ...ArrayEntry) *ArrayExtension {
	return &ArrayExtension{entries: append([]ArrayEntry(nil), entries...), keyed: true}
}
