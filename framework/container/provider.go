package container

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/definition/source"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one part of an application.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other entries inside Boot().
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("logger", func(c *container.Container) any {
//	        return logging.New(container.MustResolve[*config.Config](c, "config"))
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    logger := container.MustResolve[*logging.Logger](app, "logger")
//	    logger.Info("Application booted")
//	}
type ServiceProvider interface {
	// Register adds definitions to the container.
	// Do NOT resolve other entries here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any entry here.
	Boot(app *Container)

	// Provides returns the entry names this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil / empty slice if the provider is always eager.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() entries is first looked up.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	loaded     []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// A deferred provider is registered the first time one of its entries is
// looked up.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true
	r.mu.Unlock()

	if provider.IsDeferred() {
		for _, name := range provider.Provides() {
			r.app.deferred.add(name, func() { r.load(provider) })
		}
		r.app.logger.Debug("provider deferred",
			zap.String("provider", providerName(provider)),
			zap.Strings("provides", provider.Provides()))
		return
	}

	r.registerNow(provider)
}

// load registers a deferred provider on first use.
func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.app.deferred.remove(provider.Provides()...)
	r.registerNow(provider)
}

// registerNow lets provider add definitions, even to a compiled container.
func (r *ProviderRegistry) registerNow(provider ServiceProvider) {
	r.app.whileRegistering(func() { provider.Register(r.app) })

	r.mu.Lock()
	r.loaded = append(r.loaded, provider)
	booted := r.booted
	r.mu.Unlock()

	r.app.logger.Debug("provider registered", zap.String("provider", providerName(provider)))

	// If already booted, boot this provider immediately
	if booted {
		provider.Boot(r.app)
	}
}

// Boot calls Boot() on all registered providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.loaded...)
	r.mu.Unlock()

	for _, provider := range providers {
		provider.Boot(r.app)
	}
	r.app.logger.Debug("providers booted", zap.Int("count", len(providers)))
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the providers registered so far, deferred ones once
// they have been loaded.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.loaded...)
}

func providerName(p ServiceProvider) string {
	return fmt.Sprintf("%T", p)
}

// ── deferred source ───────────────────────────────────────────────────────────

// deferredSource sits right behind the mutable source. Looking up a name a
// deferred provider provides loads that provider, which writes its
// definitions to the mutable source, and answers from there.
type deferredSource struct {
	mu      sync.Mutex
	defs    source.Source
	pending map[string]func()
}

func newDeferredSource() *deferredSource {
	return &deferredSource{pending: make(map[string]func())}
}

func (s *deferredSource) add(name string, load func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[name] = load
}

func (s *deferredSource) remove(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.pending, name)
	}
}

func (s *deferredSource) provides(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[name]
	return ok
}

func (s *deferredSource) GetDefinition(name string) (definition.Definition, error) {
	s.mu.Lock()
	load, ok := s.pending[name]
	s.mu.Unlock()
	if !ok || s.defs == nil {
		return nil, nil
	}

	load()
	return s.defs.GetDefinition(name)
}
