package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from a YAML file and environment variables.
// Environment variable placeholders (${VAR}) in the file are expanded, and
// any key can be overridden via TRAILTIME_-prefixed variables
// (e.g. TRAILTIME_TIMING_SECRET_KEY).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TRAILTIME")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	// Empty defaults keep env-only keys visible to Unmarshal
	v.SetDefault("timing.secret_key", "")
	v.SetDefault("timing.token_expiry_seconds", 300)
	v.SetDefault("timing.base_url", "http://localhost:8080")
	v.SetDefault("auth.session_duration_minutes", 720)
	v.SetDefault("auth.staff_key", "")
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.data_dir", "")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("log.level", "info")
}
