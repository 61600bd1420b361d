// Package config provides configuration management for the medicine catalog server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultAuthMode        = "none"
	DefaultEventBuffer     = 16
)

// EnvPrefix is prepended to every configuration key to form its environment variable.
const EnvPrefix = "APP"

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvOTLPEndpoint    = "APP_OTLP_ENDPOINT"
	EnvAuthMode        = "APP_AUTH_MODE"
	EnvBasicAuthUsers  = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys         = "APP_API_KEYS"   //nolint:gosec // env var name, not a credential
	EnvJWTSecret       = "APP_JWT_SECRET" //nolint:gosec // env var name, not a credential
	EnvJWTIssuer       = "APP_JWT_ISSUER"
	EnvSeedMedicines   = "APP_SEED_MEDICINES"
	EnvEventBuffer     = "APP_EVENT_BUFFER"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int           `mapstructure:"server_port" validate:"gte=1,lte=65535"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint"`

	// Authentication mode for mutating requests: none, basic, apikey, jwt, multi.
	AuthMode string `mapstructure:"auth_mode" validate:"omitempty,oneof=none basic apikey jwt multi"`

	// Basic auth settings (format: "user1:bcrypt_hash,user2:bcrypt_hash").
	BasicAuthUsers string `mapstructure:"basic_auth_users"`

	// API key settings (format: "key1:name1,key2:name2").
	APIKeys string `mapstructure:"api_keys"`

	// JWT settings. Tokens are HS256 signed with JWTSecret.
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	JWTIssuer string `mapstructure:"jwt_issuer"`

	// Catalog settings. An empty seed list starts with the built-in sample medicines.
	SeedMedicines []string `mapstructure:"seed_medicines" validate:"dive,required,max=255"`
	EventBuffer   int      `mapstructure:"event_buffer" validate:"gte=1,lte=4096"`
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidAuthMode        = errors.New(
		"auth mode must be one of: none, basic, apikey, jwt, multi",
	)
	ErrInvalidJWTSecret = errors.New(
		"JWT secret must be at least 32 characters",
	)
	ErrInvalidSeedMedicines = errors.New(
		"seed medicines must be non-empty names of at most 255 characters",
	)
	ErrInvalidEventBuffer = errors.New(
		"event buffer must be between 1 and 4096",
	)
	ErrInvalidBasicAuthConfig = errors.New(
		"basic auth users must be set when auth mode is basic",
	)
	ErrInvalidAPIKeyConfig = errors.New(
		"API keys must be set when auth mode is apikey",
	)
	ErrInvalidJWTConfig = errors.New(
		"JWT secret must be set when auth mode is jwt",
	)
	ErrInvalidMultiAuthConfig = errors.New(
		"at least one auth config must be provided when auth mode is multi",
	)
)

// fieldErrors maps struct fields to the sentinel returned when their tag check fails.
var fieldErrors = map[string]error{
	"ServerPort":      ErrInvalidServerPort,
	"LogLevel":        ErrInvalidLogLevel,
	"ShutdownTimeout": ErrInvalidShutdownTimeout,
	"AuthMode":        ErrInvalidAuthMode,
	"JWTSecret":       ErrInvalidJWTSecret,
	"SeedMedicines":   ErrInvalidSeedMedicines,
	"EventBuffer":     ErrInvalidEventBuffer,
}

var validate = validator.New()

// Load reads configuration from the optional file at path and from
// environment variables. Environment variables have priority over the file,
// and the file over default values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", DefaultServerPort)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("metrics_enabled", DefaultMetricsEnabled)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("auth_mode", DefaultAuthMode)
	v.SetDefault("basic_auth_users", "")
	v.SetDefault("api_keys", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("seed_medicines", []string{})
	v.SetDefault("event_buffer", DefaultEventBuffer)
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return translateValidationError(err)
	}

	return c.validateAuthModeRequirements(c.authModeOrDefault())
}

// translateValidationError maps the first failing field to its sentinel error.
func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	// Slice elements are reported as Field[i].
	field := strings.SplitN(verrs[0].StructField(), "[", 2)[0]
	if sentinel, ok := fieldErrors[field]; ok {
		return sentinel
	}

	return err
}

// authModeOrDefault returns the auth mode, defaulting to "none" if empty.
func (c *Config) authModeOrDefault() string {
	if c.AuthMode == "" {
		return DefaultAuthMode
	}
	return c.AuthMode
}

// validateAuthModeRequirements validates auth-mode-specific requirements.
func (c *Config) validateAuthModeRequirements(authMode string) error {
	switch authMode {
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "jwt":
		if c.JWTSecret == "" {
			return ErrInvalidJWTConfig
		}
	case "multi":
		if !c.hasAnyAuthConfig() {
			return ErrInvalidMultiAuthConfig
		}
	}

	return nil
}

// hasAnyAuthConfig checks if at least one auth-related configuration is provided.
func (c *Config) hasAnyAuthConfig() bool {
	return c.BasicAuthUsers != "" ||
		c.APIKeys != "" ||
		c.JWTSecret != ""
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
