package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load,
// e.g. RETAILQ_LOG_LEVEL sets log.level.
const EnvPrefix = "RETAILQ_"

// Config is the CLI configuration.
type Config struct {
	Format  string `mapstructure:"format"`
	Data    string `mapstructure:"data"`
	History string `mapstructure:"history"`
	Log     Log    `mapstructure:"log"`
}

// Log configures the logger.
type Log struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// Load reads configuration from, in increasing priority: defaults, a
// retailq.yaml file (path, or ./retailq.yaml when path is empty) and
// RETAILQ_* environment variables. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("format", "table")
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("retailq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// RETAILQ_LOG_LEVEL -> log.level; a double underscore keeps a literal one,
	// as in RETAILQ_LOG_ADD__SOURCE -> log.add_source.
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		prop = strings.ReplaceAll(prop, "__", "\x00")
		prop = strings.ReplaceAll(prop, "_", ".")
		prop = strings.ReplaceAll(prop, "\x00", "_")
		v.Set(prop, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
