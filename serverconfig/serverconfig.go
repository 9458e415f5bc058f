// Package serverconfig loads the operator-facing process configuration:
// listen port, the per-tenant host to project-directory mapping (each
// project directory is watched for changes), and logging settings. Unlike routeconfig
// (one small per-tenant YAML document), this is the outer Viper-backed
// configuration, following the teacher's 12-factor config pattern.
package serverconfig

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// TenantEntry binds one host to the project directory whose build output
// and script source are served under it.
type TenantEntry struct {
	Host      string `mapstructure:"host" validate:"required"`
	Directory string `mapstructure:"directory" validate:"required"`
}

// Config is the top-level, immutable-after-load server configuration.
type Config struct {
	Environment    string        `mapstructure:"environment" validate:"required,oneof=development production"`
	Port           int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Tenants        []TenantEntry `mapstructure:"tenants" validate:"required,min=1,dive"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	PoolSize       int           `mapstructure:"pool_size" validate:"min=1"`
	LogLevel       string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat      string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" validate:"min=0"`
}

// DefaultConfig returns the baseline values merged under anything supplied
// by file/env/flag, matching the teacher's setDefaults step.
func DefaultConfig() *Config {
	return &Config{
		Environment:    "development",
		Port:           8080,
		WatchDebounce:  2 * time.Second,
		HandlerTimeout: 30 * time.Second,
		PoolSize:       4,
		LogLevel:       "info",
		LogFormat:      "text",
		RateLimitRPS:   50,
		RateLimitBurst: 100,
	}
}

var validate = validator.New()

// Load reads configuration from path (if non-empty), then the environment
// (prefixed EDGERUN_), unmarshals it onto DefaultConfig's values, and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	v.SetEnvPrefix("EDGERUN")
	v.AutomaticEnv()

	loaded := &Config{}
	if err := v.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate.Struct(loaded); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return loaded, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("environment", cfg.Environment)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("watch_debounce", cfg.WatchDebounce)
	v.SetDefault("handler_timeout", cfg.HandlerTimeout)
	v.SetDefault("pool_size", cfg.PoolSize)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("rate_limit_rps", cfg.RateLimitRPS)
	v.SetDefault("rate_limit_burst", cfg.RateLimitBurst)
}
