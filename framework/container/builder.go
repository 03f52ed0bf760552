package container

import (
	"os"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/compiler"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/definition/source"
	"github.com/km-arc/go-container/framework/introspect"
	"github.com/km-arc/go-container/framework/proxy"
	"github.com/km-arc/go-container/framework/resolver"
)

// Builder configures and creates a Container.
//
//	c, err := container.NewBuilder().
//	    WithTypes(types).
//	    AddDefinitions(map[string]any{"db.dsn": definition.Env("DB_DSN")}).
//	    EnableCompilation("var/cache/container.yaml").
//	    Build()
type Builder struct {
	sources     []source.Source
	providers   []ServiceProvider
	compilePath string
	autowiring  bool
	immutable   bool

	types   *introspect.Registry
	env     config.EnvReader
	proxies proxy.Factory
	logger  *zap.Logger

	err error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// FromConfig applies the container section of cfg: the compile path, the
// autowiring toggle and the env files visible to env definitions. Env files
// that do not exist are ignored.
func (b *Builder) FromConfig(cfg *config.Config) *Builder {
	b.compilePath = cfg.Container.CompilePath
	b.autowiring = cfg.Container.Autowiring

	files := lo.Filter(cfg.Container.EnvFiles, func(file string, _ int) bool {
		_, err := os.Stat(file)
		return err == nil
	})
	if len(files) > 0 {
		env, err := config.NewDotEnv(files...)
		if err != nil {
			b.err = err
			return b
		}
		b.env = env
	}
	return b
}

// AddDefinitions adds a map of definitions or raw values. Definitions added
// later win over earlier ones; decorators and array additions extend them.
func (b *Builder) AddDefinitions(defs map[string]any) *Builder {
	return b.AddSource(source.NewMap(defs))
}

// AddSource adds a definition source, with priority over those added before.
func (b *Builder) AddSource(src source.Source) *Builder {
	b.sources = append(b.sources, src)
	return b
}

// AddProviders registers providers while building, before compilation, so
// that what eager providers define can be compiled.
func (b *Builder) AddProviders(providers ...ServiceProvider) *Builder {
	b.providers = append(b.providers, providers...)
	return b
}

// EnableCompilation compiles the container to path, or loads path if it
// already exists.
func (b *Builder) EnableCompilation(path string) *Builder {
	b.compilePath = path
	return b
}

// UseAutowiring makes every instantiable registered type an entry of its
// own, with constructor parameters wired by type.
func (b *Builder) UseAutowiring(enabled bool) *Builder {
	b.autowiring = enabled
	return b
}

// WithoutMutableSource fixes the definitions to those of the sources;
// Set then only accepts values.
func (b *Builder) WithoutMutableSource() *Builder {
	b.immutable = true
	return b
}

func (b *Builder) WithTypes(types *introspect.Registry) *Builder {
	b.types = types
	return b
}

func (b *Builder) WithEnv(env config.EnvReader) *Builder {
	b.env = env
	return b
}

func (b *Builder) WithProxies(proxies proxy.Factory) *Builder {
	b.proxies = proxies
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build creates the container. With compilation enabled the definitions
// of the Lister sources, including those of eager providers, are compiled
// first and later served from the compiled table.
func (b *Builder) Build() (*Container, error) {
	if b.err != nil {
		return nil, b.err
	}
	types := b.types
	if types == nil {
		types = introspect.NewRegistry()
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{
		types:      types,
		logger:     logger,
		singletons: make(map[string]any),
		resolving:  make(map[string]struct{}),
		tags:       make(map[string][]string),
		deferred:   newDeferredSource(),
	}

	sources := []source.Source{c.deferred}
	for i := len(b.sources) - 1; i >= 0; i-- {
		sources = append(sources, b.sources[i])
	}
	c.source = source.NewChain(sources...)
	if !b.immutable {
		mutable := source.NewMap(nil)
		c.source.SetMutable(mutable)
		c.deferred.defs = mutable
	}
	c.source.SetAutowiring(source.NewAutowiring(types, b.autowiring))

	c.dispatcher = resolver.NewDispatcher(c, resolver.Options{
		Types:   types,
		Env:     b.env,
		Proxies: b.proxies,
		Logger:  logger,
	})
	c.singletons["container"] = c

	c.providers = NewProviderRegistry(c)
	for _, p := range b.providers {
		c.providers.Register(p)
	}

	if b.compilePath != "" {
		if _, err := compiler.New(types, logger).Compile(c.source, b.compilePath); err != nil {
			return nil, err
		}
		module, err := compiler.Load(b.compilePath)
		if err != nil {
			return nil, err
		}
		table, err := module.Accessors(runtime{c})
		if err != nil {
			return nil, err
		}
		c.compiled = table
	}
	return c, nil
}

// runtime is the container as compiled accessors see it.
type runtime struct {
	c *Container
}

func (r runtime) Get(name string) (any, error) { return r.c.Get(name) }

func (r runtime) LookupEnv(name string) (string, bool) {
	return r.c.dispatcher.Env().LookupEnv(name)
}

func (r runtime) Types() *introspect.Registry { return r.c.types }
func (r runtime) Proxies() proxy.Factory     { return r.c.dispatcher.Proxies() }
