package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const envPrefix = "NEWSDASH_"

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
	File   string `yaml:"file,omitempty"`
}

type Config struct {
	APIURL               string    `yaml:"api_url"`
	PageSize             int       `yaml:"page_size"`
	RequestTimeout       string    `yaml:"request_timeout"`
	RateLimit            float64   `yaml:"rate_limit"`
	RateBurst            int       `yaml:"rate_burst"`
	LogoutOnUnauthorized bool      `yaml:"logout_on_unauthorized"`
	Retention            string    `yaml:"retention"`
	Log                  LogConfig `yaml:"log"`
	Categories           []string  `yaml:"categories"`
	Sources              []string  `yaml:"sources"`
}

// Limit returns the page size used for every feed request, defaulting to 10.
func (c *Config) Limit() int {
	if c.PageSize <= 0 {
		return 10
	}
	return c.PageSize
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 30 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// LogLevel returns the configured zap level, falling back to info.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(xdg.StateHome, "newsdash", "newsdash.log")
}

// ParseDays parses a duration that also accepts an "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yamlv3.Marshal(c)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "newsdash", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "newsdash", "newsdash.db")
}

// Load layers the embedded defaults, the config file at path and NEWSDASH_*
// environment variables, in increasing precedence. A missing file is
// created from the defaults.
func Load(path string) (*Config, error) {
	defaults, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Non-fatal: embedded defaults still apply
		_ = writeDefaults(path)
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps NEWSDASH_LOG_LEVEL to log.level and NEWSDASH_API_URL to api_url.
// List keys are not overridable from the environment.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	switch {
	case key == "categories" || key == "sources" || key == "credentials_file":
		return ""
	case strings.HasPrefix(key, "log_"):
		return "log." + strings.TrimPrefix(key, "log_")
	}
	return key
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url: host is required")
	}
	if cfg.PageSize < 0 {
		return fmt.Errorf("page_size must not be negative, got %d", cfg.PageSize)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", cfg.RateLimit)
	}
	if cfg.RequestTimeout != "" {
		if _, err := time.ParseDuration(cfg.RequestTimeout); err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
	}
	if cfg.Retention != "" {
		if _, err := ParseDays(cfg.Retention); err != nil {
			return fmt.Errorf("retention: %w", err)
		}
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q (valid: json, console)", cfg.Log.Format)
	}
	if cfg.Log.Level != "" {
		if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if err := validateNames("categories", cfg.Categories); err != nil {
		return err
	}
	return validateNames("sources", cfg.Sources)
}

func validateNames(field string, names []string) error {
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%s %d: name is required", field, i)
		}
		if seen[n] {
			return fmt.Errorf("%s: duplicate entry %q", field, n)
		}
		seen[n] = true
	}
	return nil
}
