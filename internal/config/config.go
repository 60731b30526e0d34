// Package config loads settings from defaults, an optional YAML file, .env, the
// environment (ARCHITECT_ prefix) and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderOff    = "off"
	ProviderGemini = "gemini"
)

type Config struct {
	AI     AIConfig     `mapstructure:"ai"`
	Output OutputConfig `mapstructure:"output"`
	Render RenderConfig `mapstructure:"render"`
	Limits LimitsConfig `mapstructure:"limits"`
	Log    LogConfig    `mapstructure:"log"`
}

type AIConfig struct {
	Provider   string `mapstructure:"provider"`
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type RenderConfig struct {
	Scale    float64       `mapstructure:"scale"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"fetch_timeout"`
}

// LimitsConfig holds upload size limits in bytes.
type LimitsConfig struct {
	Document int64 `mapstructure:"document"`
	Logo     int64 `mapstructure:"logo"`
	Cover    int64 `mapstructure:"cover"`
	Day      int64 `mapstructure:"day"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"out":        "output.dir",
	"ai":         "ai.provider",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// Load reads the configuration. path may be empty, in which case architect.yaml in the
// working directory is used when present. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("architect")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("ARCHITECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ai.api_key", "ARCHITECT_AI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.text_model", "gemini-3-pro-preview")
	v.SetDefault("ai.image_model", "gemini-2.5-flash-image")

	v.SetDefault("output.dir", ".")

	v.SetDefault("render.scale", 3)
	v.SetDefault("render.cache_ttl", "30m")
	v.SetDefault("render.fetch_timeout", "30s")

	v.SetDefault("limits.document", 20<<20)
	v.SetDefault("limits.logo", 2<<20)
	v.SetDefault("limits.cover", 5<<20)
	v.SetDefault("limits.day", 5<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func (c *Config) Validate() error {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case ProviderOff, ProviderGemini:
	default:
		return fmt.Errorf("invalid ai provider %q (off or gemini)", c.AI.Provider)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %v", c.Render.Scale)
	}
	if c.Limits.Document <= 0 || c.Limits.Logo <= 0 || c.Limits.Cover <= 0 || c.Limits.Day <= 0 {
		return fmt.Errorf("size limits must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (console or json)", c.Log.Format)
	}
	return nil
}
