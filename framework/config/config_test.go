package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func setEnv(t *testing.T, key, val string) {
	t.Helper()
	t.Setenv(key, val) // automatically restored after test
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "APP_NAME", "")
	setEnv(t, "APP_ENV", "")
	setEnv(t, "CONTAINER_COMPILE_PATH", "")
	setEnv(t, "LOG_LEVEL", "")

	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "GoContainer"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"Container.CompilePath", cfg.Container.CompilePath, ""},
		{"Log.Level", cfg.Log.Level, "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.True(t, cfg.Container.Autowiring)
	assert.Equal(t, []string{"testdata/empty.env"}, cfg.Container.EnvFiles)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	setEnv(t, "APP_NAME", "MyApp")
	setEnv(t, "APP_ENV", "production")
	setEnv(t, "CONTAINER_COMPILE_PATH", "/tmp/compiled.yaml")
	setEnv(t, "CONTAINER_AUTOWIRING", "false")

	cfg := config.Load("testdata/empty.env")

	assert.Equal(t, "MyApp", cfg.App.Name)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "/tmp/compiled.yaml", cfg.Container.CompilePath)
	assert.False(t, cfg.Container.Autowiring)
}

func TestLoad_AppDebugFalse(t *testing.T) {
	setEnv(t, "APP_DEBUG", "false")
	cfg := config.Load("testdata/empty.env")
	assert.False(t, cfg.App.Debug)
}

// ── Get / GetInt / GetBool ───────────────────────────────────────────────────

func TestGet_ReturnsValueOrFallback(t *testing.T) {
	setEnv(t, "CUSTOM_KEY", "hello")
	assert.Equal(t, "hello", config.Get("CUSTOM_KEY", "default"))
	assert.Equal(t, "fallback", config.Get("SURELY_MISSING_KEY_42", "fallback"))
}

func TestGetInt(t *testing.T) {
	setEnv(t, "SOME_INT", "42")
	assert.Equal(t, 42, config.GetInt("SOME_INT", 0))

	setEnv(t, "SOME_INT", "notanint")
	assert.Equal(t, 99, config.GetInt("SOME_INT", 99))
}

func TestGetBool(t *testing.T) {
	for _, val := range []string{"true", "1", "True", "TRUE"} {
		setEnv(t, "BOOL_KEY", val)
		assert.True(t, config.GetBool("BOOL_KEY", false), val)
	}
	setEnv(t, "BOOL_KEY", "notabool")
	assert.True(t, config.GetBool("BOOL_KEY", true))
}

// ── EnvReader ────────────────────────────────────────────────────────────────

func TestDotEnv_FirstFileWinsAndProcessEnvOverrides(t *testing.T) {
	reader, err := config.NewDotEnv("testdata/mail.env", "testdata/override.env")
	require.NoError(t, err)

	v, ok := reader.LookupEnv("MAIL_HOST")
	require.True(t, ok)
	assert.Equal(t, "smtp.example.test", v)

	v, ok = reader.LookupEnv("QUEUE")
	require.True(t, ok)
	assert.Equal(t, "redis", v)

	setEnv(t, "MAIL_PORT", "25")
	v, _ = reader.LookupEnv("MAIL_PORT")
	assert.Equal(t, "25", v)

	_, ok = reader.LookupEnv("NOT_IN_ANY_FILE_42")
	assert.False(t, ok)
}

func TestDotEnv_MissingFile(t *testing.T) {
	_, err := config.NewDotEnv("testdata/does-not-exist.env")
	require.Error(t, err)
}

func TestMapEnv(t *testing.T) {
	env := config.MapEnv{"A": "1"}
	v, ok := env.LookupEnv("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = env.LookupEnv("B")
	assert.False(t, ok)
}

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Env: "production"},
		Log: config.LogConfig{Level: "debug", Format: "json"},
	}
	logger, err := config.NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "debug level enabled")
}
