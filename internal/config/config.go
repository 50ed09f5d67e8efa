// Package config loads runtime settings for the survey tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-surveyform/pkg/client"
	"github.com/goliatone/go-surveyform/pkg/notify"
)

// Config holds application configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Notify NotifyConfig `yaml:"notify"`
	Theme  ThemeConfig  `yaml:"theme"`
}

// APIConfig points at the survey backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig holds web UI settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"` // "*" allows any origin
}

// LogConfig selects the zap level and encoder ("json" or "console").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotifyConfig controls banner lifetime.
type NotifyConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// ThemeConfig selects a go-theme theme and variant for the web UI.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Default returns the built in settings.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: client.DefaultBaseURL,
			Timeout: client.DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Notify: NotifyConfig{
			TTL: notify.DefaultTTL,
		},
		Theme: ThemeConfig{
			Name:    "default",
			Variant: "light",
		},
	}
}

// Load reads an optional .env file, then the YAML file at path (skipped when
// path is empty), then the SURVEY_* environment variables. Later sources win.
func Load(path string) (Config, error) {
	_ = godotenv.Load()
	return LoadWith(path, os.LookupEnv)
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// LoadWith is Load without the .env step, reading variables through lookup.
func LoadWith(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	getEnv := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	getDuration := func(key string, target *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*target = d
		return nil
	}

	getEnv("SURVEY_API_URL", &cfg.API.BaseURL)
	getEnv("SURVEY_LISTEN_ADDR", &cfg.Server.Addr)
	getEnv("SURVEY_LOG_LEVEL", &cfg.Log.Level)
	getEnv("SURVEY_LOG_FORMAT", &cfg.Log.Format)
	getEnv("SURVEY_THEME", &cfg.Theme.Name)
	getEnv("SURVEY_THEME_VARIANT", &cfg.Theme.Variant)
	if v, ok := lookup("SURVEY_CORS_ORIGINS"); ok {
		cfg.Server.CORSOrigins = splitTrim(v, ",")
	}
	if err := getDuration("SURVEY_HTTP_TIMEOUT", &cfg.API.Timeout); err != nil {
		return err
	}
	return getDuration("SURVEY_NOTIFY_TTL", &cfg.Notify.TTL)
}

// Validate rejects settings the tools cannot start with.
func (c Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("config: api base url %q must be http or https", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("config: api timeout must be positive"))
	}
	if c.Notify.TTL <= 0 {
		errs = append(errs, errors.New("config: notify ttl must be positive"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("config: unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
