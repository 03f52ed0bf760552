package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider puts the application configuration in the container.
//
// Entries:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
//   - "config.app"    → *config.AppConfig
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	app.Instance("config", p.Config)
	app.Instance("config.app", &p.Config.App)
	app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the application logger.
//
// Entries:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Instance("logger", p.Logger)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. Its entry routes resolve
// through the container.
//
// Entries:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		logger, err := container.Resolve[*zap.Logger](c, "logger")
		if err != nil {
			logger = zap.NewNop()
		}
		return routing.New(c, logger)
	})
}
