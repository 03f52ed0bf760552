// Package container provides a definition-driven dependency injection
// container and a Service Provider system for Go.
//
// # Overview
//
// The container answers entry names with values. How an entry is built is
// described by a definition (see package definition): a literal value, an
// alias, an object of a registered type with constructor, property and
// method injection, a factory func, a decorator, an environment variable,
// a string with {entry} placeholders, or an array of any of those.
//
// Singleton entries are built once and cached; prototype entries are built
// on every Get. Make always builds a fresh value and can override
// constructor parameters by name. Asking for an entry while it is being
// built is a CircularDependencyError.
//
// # Container Lifecycle
//
//  1. Build: c, err := container.NewBuilder().AddDefinitions(defs).Build()
//  2. Register providers: c.Providers().Register(&MyProvider{})
//  3. Boot: c.Providers().Boot()    (safe to resolve everything after this)
//  4. Serve requests
//
// # Definitions
//
//	types := introspect.NewRegistry()
//	introspect.MustRegister(types, "mail.SMTP", mail.NewSMTP,
//	    introspect.Params("host", "port"),
//	    introspect.Default("port", 25))
//
//	c, err := container.NewBuilder().
//	    WithTypes(types).
//	    AddDefinitions(map[string]any{
//	        "mail.host": definition.Env("MAIL_HOST", "localhost"),
//	        "mailer": definition.Create("mail.SMTP").
//	            Constructor(definition.Get("mail.host")).
//	            Lazy(),
//	    }).
//	    Build()
//
//	mailer, err := container.Resolve[*mail.SMTP](c, "mailer")
//
// # Compilation
//
// EnableCompilation writes the statically resolvable definitions to a YAML
// module and serves them from a table of prebuilt accessors. The module is
// only written when the file does not exist yet: delete it after changing
// definitions. Entries that cannot be compiled (factories, decorators)
// keep using the generic resolvers. A compiled container refuses new
// definitions from Set; values can still be Set, and service providers
// can still register entries that are not compiled.
//
// # Registration helpers
//
//	// Prototype: a new value on every Get
//	c.Bind("request.id", func(c *container.Container) any { return uuid.New() })
//
//	// Singleton: created once, reused
//	c.Singleton("cache", func(c *container.Container) any {
//	    return cache.New(container.MustResolve[*config.Config](c, "config"))
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("cache", "cache.manager")
//
// # Contextual Binding
//
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) any { return &S3Filesystem{} })
//
// # Tags
//
//	c.Tag([]string{"report.cpu", "report.memory"}, "reports")
//	reports, err := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) any {
//	        return heavySetup() // only called on first app.Get("heavy")
//	    })
//	}
package container
