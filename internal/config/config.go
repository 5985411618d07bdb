// Package config provides configuration management for the timing service.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Timing  TimingConfig  `mapstructure:"timing" validate:"required"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// TimingConfig represents token issuance configuration
type TimingConfig struct {
	// SecretKey signs checkpoint tokens; rotating it invalidates all
	// outstanding tokens
	SecretKey          string `mapstructure:"secret_key" validate:"required"`
	TokenExpirySeconds int    `mapstructure:"token_expiry_seconds" validate:"required,gt=0"`
	BaseURL            string `mapstructure:"base_url" validate:"required,url"`
}

// TokenExpiry returns the configured expiry window as a duration
func (c TimingConfig) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpirySeconds) * time.Second
}

// AuthConfig represents session configuration
type AuthConfig struct {
	SessionDurationMinutes int    `mapstructure:"session_duration_minutes" validate:"omitempty,gt=0"`
	StaffKey               string `mapstructure:"staff_key"`
}

// SessionDuration returns the configured session lifetime
func (c AuthConfig) SessionDuration() time.Duration {
	return time.Duration(c.SessionDurationMinutes) * time.Minute
}

// StorageConfig represents storage backend configuration
type StorageConfig struct {
	Type     string `mapstructure:"type" validate:"required,oneof=memory file redis"`
	DataDir  string `mapstructure:"data_dir"`
	RedisURL string `mapstructure:"redis_url"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Storage.Type == "file" && c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required when storage.type is file")
	}
	if c.Storage.Type == "redis" && c.Storage.RedisURL == "" {
		return fmt.Errorf("storage.redis_url is required when storage.type is redis")
	}
	return nil
}
