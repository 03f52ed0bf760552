package app

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/errors"
	"github.com/km-arc/go-container/framework/providers"
	"github.com/km-arc/go-container/framework/routing"
)

// Application is the top-level application container.
// It embeds the Container and its ProviderRegistry so user code can
// call app.Get(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	logger *zap.Logger
}

// New loads the configuration from envFiles (.env by default) and
// bootstraps the application with an empty builder.
func New(envFiles ...string) (*Application, error) {
	return Bootstrap(config.Load(envFiles...), container.NewBuilder())
}

// Bootstrap creates the application from cfg. b carries the application's
// own definitions, types and providers; the container section of cfg
// (compile path, autowiring, env files) is applied to it. The framework
// providers are registered first.
func Bootstrap(cfg *config.Config, b *container.Builder) (*Application, error) {
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}

	c, err := b.FromConfig(cfg).
		WithLogger(logger).
		AddProviders(
			&providers.ConfigServiceProvider{Config: cfg},
			&providers.LoggingServiceProvider{Logger: logger},
			&providers.RoutingServiceProvider{},
		).
		Build()
	if err != nil {
		return nil, err
	}

	return &Application{
		Container: c,
		Providers: c.Providers(),
		logger:    logger,
	}, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

func (a *Application) Logger() *zap.Logger { return a.logger }

// Run boots the application (if needed) and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started",
			zap.String("app", cfg.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving http")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
