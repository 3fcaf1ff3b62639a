// Package config loads the application configuration from YAML with
// environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ngrash/tsconv/calendar"
)

// EnvPrefix prefixes the environment variables that override the file,
// e.g. TSCONV_HTTP_PORT or TSCONV_DEFAULTS_DATE_FORMAT.
const EnvPrefix = "TSCONV"

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// Load reads filename, expands ${VAR} references and decodes it into
// target, then applies EnvPrefix overrides from the environment. Fields
// absent from both keep their current value, so target is usually prepared
// with NewDefault.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", filename, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("parse config file %s: %w", filename, err)
	}
	return finish(target)
}

// LoadOptional is Load, except that a missing file is skipped and only the
// environment overrides are applied.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return finish(target)
	}
	return Load(filename, target)
}

func finish[T any](target *T) error {
	if err := envconfig.Process(EnvPrefix, target); err != nil {
		return fmt.Errorf("read config environment: %w", err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// Config is the application configuration.
type Config struct {
	Log         LogConfig         `yaml:"log"`
	HTTP        HTTPConfig        `yaml:"http"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Preferences PreferencesConfig `yaml:"preferences"`
	ZoneInfo    ZoneInfoConfig    `yaml:"zoneinfo"`
}

// Validate reports every invalid field, grouped by section.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.HTTP),
		validation.Field(&c.Defaults),
		validation.Field(&c.Preferences),
	)
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Validate implements validation.Validatable.
func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required,
			validation.In("trace", "debug", "info", "warn", "error")),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`

	// AllowedOrigins enables CORS for browser front-ends. Empty disables it.
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

// Address returns the HTTP listen address.
func (c HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate implements validation.Validatable.
func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// DefaultsConfig holds the preferences used until the user saves their own.
type DefaultsConfig struct {
	DateFormat string `yaml:"date_format" split_words:"true"`
	Timezone   string `yaml:"timezone"`
}

// Validate implements validation.Validatable.
func (c DefaultsConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DateFormat, validation.Required, validation.In("us", "eu")),
		validation.Field(&c.Timezone, validation.Required, validation.By(loadableZone)),
	)
}

// PreferencesConfig locates the preference file.
type PreferencesConfig struct {
	Path     string        `yaml:"path"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate implements validation.Validatable.
func (c PreferencesConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Debounce, validation.Required, validation.Min(time.Millisecond)),
	)
}

// ZoneInfoConfig overrides where the zone catalog is read from.
type ZoneInfoConfig struct {
	Dir string `yaml:"dir"`
}

func loadableZone(v any) error {
	zone, _ := v.(string)
	if zone == "" {
		return nil
	}
	if _, err := new(calendar.System).FieldsIn(0, zone); err != nil {
		return errors.New("must be a known time zone")
	}
	return nil
}

// NewDefault returns a Config with default values.
func NewDefault() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Defaults: DefaultsConfig{
			DateFormat: "us",
			Timezone:   calendar.UTC,
		},
		Preferences: PreferencesConfig{
			Path:     "tsconv.prefs.yaml",
			Debounce: 200 * time.Millisecond,
		},
	}
}
