// Package config loads the builder's settings from flags, environment,
// an optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PAGEBUILDER_SERVER_ADDR.
const EnvPrefix = "PAGEBUILDER"

type ServerConfig struct {
	Addr    string        `mapstructure:"addr"`
	CSRF    bool          `mapstructure:"csrf"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type DataSourcesConfig struct {
	Seed               string        `mapstructure:"seed"`
	RefreshTimeout     time.Duration `mapstructure:"refresh_timeout"`
	RefreshConcurrency int           `mapstructure:"refresh_concurrency"`
}

type InterpolateConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type RenderConfig struct {
	Layouts string `mapstructure:"layouts"` // directory of custom page layouts, empty for the built-in one
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full set of settings.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	DataSources DataSourcesConfig `mapstructure:"datasources"`
	Interpolate InterpolateConfig `mapstructure:"interpolate"`
	Render      RenderConfig      `mapstructure:"render"`
	Log         LogConfig         `mapstructure:"log"`
}

// New returns a viper instance with every key defaulted and environment
// overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.csrf", false)
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("storage.driver", "json")
	v.SetDefault("storage.path", ".builder_data")
	v.SetDefault("datasources.seed", "")
	v.SetDefault("datasources.refresh_timeout", 10*time.Second)
	v.SetDefault("datasources.refresh_concurrency", 4)
	v.SetDefault("interpolate.cache_size", 128)
	v.SetDefault("render.layouts", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds command-line flags to config keys. Flags missing from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, flag := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s to %s: %w", flag, key, err)
		}
	}
	return nil
}

// Load reads the optional config file and decodes the settings. With an empty
// path, pagebuilder.yaml in the working directory is used when present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pagebuilder")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite":
	default:
		return fmt.Errorf("config: storage.driver must be json or sqlite, got %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return errors.New("config: storage.path is required")
	}
	if c.DataSources.RefreshConcurrency < 1 {
		return fmt.Errorf("config: datasources.refresh_concurrency must be at least 1, got %d", c.DataSources.RefreshConcurrency)
	}
	if c.Interpolate.CacheSize < 1 {
		return fmt.Errorf("config: interpolate.cache_size must be at least 1, got %d", c.Interpolate.CacheSize)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: invalid log.level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger builds the slog logger described by c.
func NewLogger(c LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
