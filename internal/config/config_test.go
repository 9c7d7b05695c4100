package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Categories, "expected default categories")
	assert.NotEmpty(t, cfg.Sources, "expected default sources")
	assert.Equal(t, 10, cfg.PageSize)
	assert.True(t, cfg.LogoutOnUnauthorized)
	assert.NoError(t, validate(cfg))
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 10, (&Config{}).Limit())
	assert.Equal(t, 25, (&Config{PageSize: 25}).Limit())
}

func TestRequestTimeoutDuration(t *testing.T) {
	cfg := &Config{RequestTimeout: "30s"}
	assert.Equal(t, 30*time.Second, cfg.RequestTimeoutDuration())

	cfg.RequestTimeout = "invalid"
	assert.Equal(t, 15*time.Second, cfg.RequestTimeoutDuration(), "invalid timeout falls back")
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"7d", 7},
		{"720h", 30},
		{"", 30},
		{"invalid", 30},
	}
	for _, tt := range tests {
		cfg := &Config{Retention: tt.input}
		assert.Equal(t, time.Duration(tt.wantDays)*24*time.Hour, cfg.RetentionDuration(), "RetentionDuration(%q)", tt.input)
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, (&Config{Log: LogConfig{Level: "debug"}}).LogLevel())
	assert.Equal(t, zapcore.InfoLevel, (&Config{Log: LogConfig{Level: "loud"}}).LogLevel())
}

func TestLogPathOverride(t *testing.T) {
	cfg := &Config{Log: LogConfig{File: "/tmp/custom.log"}}
	assert.Equal(t, "/tmp/custom.log", cfg.LogPath())
	assert.True(t, strings.HasSuffix((&Config{}).LogPath(), filepath.Join("newsdash", "newsdash.log")))
}

func TestLoadFromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `api_url: https://news.example.com
page_size: 20
categories:
  - science
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://news.example.com", cfg.APIURL)
	assert.Equal(t, 20, cfg.PageSize)
	// Lists in the file replace the defaults instead of merging
	assert.Equal(t, []string{"science"}, cfg.Categories)
	// Keys absent from the file keep their defaults
	assert.NotEmpty(t, cfg.Sources)
	assert.Equal(t, "15s", cfg.RequestTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api_url: https://file.example.com\n"), 0o644))

	t.Setenv("NEWSDASH_API_URL", "https://env.example.com")
	t.Setenv("NEWSDASH_PAGE_SIZE", "5")
	t.Setenv("NEWSDASH_LOG_LEVEL", "debug")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadNonexistentWritesDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Categories)
	assert.FileExists(t, cfgPath)
}

func TestLoadInvalidFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("api_url: ftp://example.com\n"), 0o644))

	_, err := Load(cfgPath)
	assert.ErrorContains(t, err, "api_url")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NEWSDASH_API_URL", "api_url"},
		{"NEWSDASH_LOG_FORMAT", "log.format"},
		{"NEWSDASH_LOGOUT_ON_UNAUTHORIZED", "logout_on_unauthorized"},
		{"NEWSDASH_CATEGORIES", ""},
		{"NEWSDASH_CREDENTIALS_FILE", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envKey(tt.input), "envKey(%q)", tt.input)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{APIURL: "https://example.com", Categories: []string{"a"}, Sources: []string{"b"}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"http allowed", func(c *Config) { c.APIURL = "http://localhost:4000" }, false},
		{"file scheme", func(c *Config) { c.APIURL = "file:///etc/passwd" }, true},
		{"missing host", func(c *Config) { c.APIURL = "https://" }, true},
		{"negative page size", func(c *Config) { c.PageSize = -1 }, true},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, true},
		{"bad timeout", func(c *Config) { c.RequestTimeout = "soon" }, true},
		{"bad retention", func(c *Config) { c.Retention = "forever" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"empty category", func(c *Config) { c.Categories = []string{" "} }, true},
		{"duplicate source", func(c *Config) { c.Sources = []string{"x", "x"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, validate(cfg))
			} else {
				assert.NoError(t, validate(cfg))
			}
		})
	}
}

func TestConfigYAML(t *testing.T) {
	cfg := &Config{APIURL: "https://example.com", PageSize: 10}
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "api_url: https://example.com")
}
