package app

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/phasegrid/internal/pages"
)

func TestNewConfigFillsDefaults(t *testing.T) {
	cfg, err := NewConfig(Config{Page: pages.SimpleName, Hz: 60, LogLevel: "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultSnapshotWidth, cfg.SnapshotWidth)
	assert.Equal(t, DefaultSnapshotHeight, cfg.SnapshotHeight)
}

func TestNewConfigRejects(t *testing.T) {
	base := func(mut func(*Config)) Config {
		c := Config{Page: pages.SimpleName, Hz: 60}
		mut(&c)
		return c
	}
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"nothing to run", base(func(c *Config) { c.Page = "" }), "one of page or scene path is required"},
		{"page and scene", base(func(c *Config) { c.ScenePath = "scenes" }), "mutually exclusive"},
		{"unknown page", base(func(c *Config) { c.Page = "page9" }), `unknown page "page9"`},
		{"zero hz", base(func(c *Config) { c.Hz = 0 }), "hz must be positive"},
		{"negative workers", base(func(c *Config) { c.Workers = -1 }), "workers must not be negative"},
		{"rows on wrong page", base(func(c *Config) { c.FourierRows = 2 }), "fourier rows need the fourier page"},
		{"negative rows", base(func(c *Config) { c.Page = pages.FourierName; c.FourierRows = -2 }), "must not be negative"},
		{"port range", base(func(c *Config) { c.StreamPort = 70000 }), "stream port 70000 out of range"},
		{"same ports", base(func(c *Config) { c.StreamPort = 8080; c.HealthcheckPort = 8080 }), "must differ"},
		{"log level", base(func(c *Config) { c.LogLevel = "verbose" }), `invalid log level "verbose"`},
		{"log format", base(func(c *Config) { c.LogFormat = "xml" }), `invalid log format "xml"`},
		{"snapshot size", base(func(c *Config) { c.SnapshotWidth = -1 }), "must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewConfigReportsEveryProblem(t *testing.T) {
	_, err := NewConfig(Config{Page: "nope", Hz: -1, Workers: -3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 errors occurred")
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	var text, js strings.Builder
	newLogger("info", "text", &text).Info("Hi.", "k", 1)
	newLogger("info", "json", &js).Info("Hi.", "k", 1)
	newLogger("warn", "text", &text).Info("Hidden.")

	assert.Contains(t, text.String(), "msg=Hi. k=1")
	assert.NotContains(t, text.String(), "Hidden.")
	assert.Contains(t, js.String(), `"msg":"Hi.","k":1`)
}
