package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/definition"
)

type bootProvider struct {
	container.BaseProvider
	booted bool
}

func (p *bootProvider) Register(app *container.Container) {
	app.Singleton("handler.hello", func(c *container.Container) any {
		greeting := container.MustResolve[string](c, "greeting")
		return func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(greeting)) }
	})
}

func (p *bootProvider) Boot(*container.Container) { p.booted = true }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:       config.AppConfig{Name: "test", Env: "testing", Port: "0"},
		Container: config.ContainerConfig{CompilePath: filepath.Join(t.TempDir(), "container.yaml")},
		Log:       config.LogConfig{Level: "error"},
	}
}

func TestBootstrap(t *testing.T) {
	cfg := testConfig(t)
	application, err := app.Bootstrap(cfg, container.NewBuilder().
		AddDefinitions(map[string]any{"greeting": definition.String("hello from {config.name}"), "config.name": "test"}))
	require.NoError(t, err)

	p := &bootProvider{}
	application.Register(p)
	application.Boot()
	assert.True(t, p.booted)

	assert.Same(t, cfg, application.Config())
	assert.Same(t, cfg, container.MustResolve[*config.Config](application.Container, "configuration"))
	assert.Equal(t, "testing", application.Environment())
	assert.True(t, application.IsTesting())
	assert.False(t, application.IsProduction())
	assert.NotNil(t, application.Logger())

	router := application.Router()
	router.Handle(http.MethodGet, "/hello", "handler.hello")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello from test", rr.Body.String())

	assert.FileExists(t, cfg.Container.CompilePath)
}

func TestRun_StopsWithContext(t *testing.T) {
	application, err := app.Bootstrap(testConfig(t), container.NewBuilder())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, application.Run(ctx))
	assert.True(t, application.Providers.Booted())
}
