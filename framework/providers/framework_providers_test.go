package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/providers"
	"github.com/km-arc/go-container/framework/routing"
)

func TestFrameworkProviders(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "shop"}}
	logger := zap.NewNop()

	c, err := container.NewBuilder().
		AddProviders(
			&providers.ConfigServiceProvider{Config: cfg},
			&providers.LoggingServiceProvider{Logger: logger},
			&providers.RoutingServiceProvider{},
		).
		Build()
	require.NoError(t, err)

	assert.Same(t, cfg, container.MustResolve[*config.Config](c, "config"))
	assert.Same(t, cfg, container.MustResolve[*config.Config](c, "configuration"))
	assert.Equal(t, "shop", container.MustResolve[*config.AppConfig](c, "config.app").Name)
	assert.Same(t, logger, container.MustResolve[*zap.Logger](c, "logger"))

	router := container.MustResolve[*routing.Router](c, "router")
	assert.Same(t, router, container.MustResolve[*routing.Router](c, "router"))
}

func TestRoutingServiceProvider_WithoutLogger(t *testing.T) {
	c := container.New()
	c.Providers().Register(&providers.RoutingServiceProvider{})
	assert.NotNil(t, container.MustResolve[*routing.Router](c, "router"))
}
