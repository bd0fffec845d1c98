// Package config provides YAML-based configuration loading with environment
// variable expansion, and the application's configuration tree.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadOrDefault loads filename when it exists. A missing file leaves target
// untouched apart from validation.
func LoadOrDefault[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if validator, ok := any(target).(Validator); ok {
			if err := validator.Validate(); err != nil {
				return fmt.Errorf("config validation failed: %w", err)
			}
		}
		return nil
	}
	return Load(filename, target)
}

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModePassword = "password"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Circulation CirculationConfig `yaml:"circulation"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Circulation.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CirculationConfig holds the late-return penalty policy.
type CirculationConfig struct {
	GraceDays int   `yaml:"grace_days"`
	DailyRate int64 `yaml:"daily_rate"`
}

// Validate validates the circulation configuration.
func (c *CirculationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GraceDays, validation.Min(0)),
		validation.Field(&c.DailyRate, validation.Min(int64(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how credentials are checked by the CLI:
//   - "disabled" (default): no prompts, suitable for scripting and local use.
//   - "password": member commands verify the member's password and
//     admin commands verify AdminPasswordHash, which must be a bcrypt hash.
type AuthConfig struct {
	Mode              string `yaml:"mode"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModePassword)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModePassword && c.AdminPasswordHash == "" {
		return fmt.Errorf("auth: mode is %q but admin_password_hash is empty", AuthModePassword)
	}
	return nil
}

// Enabled returns true when credentials are checked.
func (c *AuthConfig) Enabled() bool {
	return c.Mode == AuthModePassword
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelWarn,
			LogFormat: LogFormatText,
		},
		SQLite: SQLiteConfig{
			Path: "library.db",
		},
		Circulation: CirculationConfig{
			GraceDays: 14,
			DailyRate: 10,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
