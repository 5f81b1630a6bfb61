// Package config loads the process configuration from environment
// variables, with sensible defaults for local development.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port    string `mapstructure:"port"`
	DBPath  string `mapstructure:"db_path"`
	LogMode string `mapstructure:"log_mode"`

	// Minutes between automatic dispatch runs. Zero disables the
	// in-process timer; the cron HTTP endpoint still works.
	DispatchIntervalMinutes int `mapstructure:"dispatch_interval_minutes"`

	// When enabled, the scheduler also promotes scheduled posts whose
	// publish time has passed. Off by default: overdue posts normally
	// require a manual "publish now" from the dashboard.
	PromoteOverdue bool `mapstructure:"promote_overdue"`

	OpenAI OpenAIConfig `mapstructure:",squash"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"openai_api_key"`
	BaseURL        string `mapstructure:"openai_base_url"`
	Model          string `mapstructure:"openai_model"`
	TimeoutSeconds int    `mapstructure:"openai_timeout_seconds"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "6835")
	v.SetDefault("db_path", "prensa.db")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("dispatch_interval_minutes", 60)
	v.SetDefault("promote_overdue", false)
	v.SetDefault("openai_base_url", "https://api.openai.com")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_timeout_seconds", 120)

	v.SetEnvPrefix("PRENSA")
	v.AutomaticEnv()

	// the OpenAI variables follow the conventional unprefixed names
	for _, key := range []string{"openai_api_key", "openai_base_url", "openai_model", "openai_timeout_seconds"} {
		if err := v.BindEnv(key, toEnvName(key)); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func toEnvName(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
