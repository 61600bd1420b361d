package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

// clearEnvVars blanks every APP_* variable for the duration of the test.
// Empty values are treated as unset by the loader.
func clearEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		EnvServerPort,
		EnvLogLevel,
		EnvShutdownTimeout,
		EnvMetricsEnabled,
		EnvOTLPEndpoint,
		EnvAuthMode,
		EnvBasicAuthUsers,
		EnvAPIKeys,
		EnvJWTSecret,
		EnvJWTIssuer,
		EnvSeedMedicines,
		EnvEventBuffer,
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	// Arrange - Clear all environment variables
	clearEnvVars(t)

	// Act
	cfg, err := Load("")

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, DefaultServerPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.MetricsEnabled != DefaultMetricsEnabled {
		t.Errorf("MetricsEnabled = %v, want %v", cfg.MetricsEnabled, DefaultMetricsEnabled)
	}
	if cfg.AuthMode != DefaultAuthMode {
		t.Errorf("AuthMode = %s, want %s", cfg.AuthMode, DefaultAuthMode)
	}
	if cfg.EventBuffer != DefaultEventBuffer {
		t.Errorf("EventBuffer = %d, want %d", cfg.EventBuffer, DefaultEventBuffer)
	}
	if len(cfg.SeedMedicines) != 0 {
		t.Errorf("SeedMedicines = %v, want empty", cfg.SeedMedicines)
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("OTLPEndpoint = %s, want empty string", cfg.OTLPEndpoint)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(*testing.T, *Config)
	}{
		{
			name:    "custom server port",
			envVars: map[string]string{EnvServerPort: "9090"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ServerPort != 9090 {
					t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
				}
			},
		},
		{
			name:    "custom log level",
			envVars: map[string]string{EnvLogLevel: "debug"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "debug" {
					t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
				}
			},
		},
		{
			name:    "custom shutdown timeout",
			envVars: map[string]string{EnvShutdownTimeout: "60s"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.ShutdownTimeout != 60*time.Second {
					t.Errorf("ShutdownTimeout = %v, want 60s", cfg.ShutdownTimeout)
				}
			},
		},
		{
			name:    "metrics disabled",
			envVars: map[string]string{EnvMetricsEnabled: "false"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.MetricsEnabled {
					t.Error("MetricsEnabled = true, want false")
				}
			},
		},
		{
			name:    "otlp endpoint",
			envVars: map[string]string{EnvOTLPEndpoint: "localhost:4317"},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.OTLPEndpoint != "localhost:4317" {
					t.Errorf("OTLPEndpoint = %s, want localhost:4317", cfg.OTLPEndpoint)
				}
			},
		},
		{
			name:    "seed medicines",
			envVars: map[string]string{EnvSeedMedicines: "Aspirin,Ibuprofen"},
			validate: func(t *testing.T, cfg *Config) {
				want := []string{"Aspirin", "Ibuprofen"}
				if !reflect.DeepEqual(cfg.SeedMedicines, want) {
					t.Errorf("SeedMedicines = %v, want %v", cfg.SeedMedicines, want)
				}
			},
		},
		{
			name: "jwt auth",
			envVars: map[string]string{
				EnvAuthMode:  "jwt",
				EnvJWTSecret: testJWTSecret,
				EnvJWTIssuer: "medcatalog",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.AuthMode != "jwt" || cfg.JWTSecret != testJWTSecret || cfg.JWTIssuer != "medcatalog" {
					t.Errorf("unexpected jwt config: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			cfg, err := Load("")

			// Assert
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{"port too high", map[string]string{EnvServerPort: "70000"}, ErrInvalidServerPort},
		{"port zero", map[string]string{EnvServerPort: "0"}, ErrInvalidServerPort},
		{"bad log level", map[string]string{EnvLogLevel: "verbose"}, ErrInvalidLogLevel},
		{"negative timeout", map[string]string{EnvShutdownTimeout: "-1s"}, ErrInvalidShutdownTimeout},
		{"unknown auth mode", map[string]string{EnvAuthMode: "oidc"}, ErrInvalidAuthMode},
		{"short jwt secret", map[string]string{EnvJWTSecret: "short"}, ErrInvalidJWTSecret},
		{"basic without users", map[string]string{EnvAuthMode: "basic"}, ErrInvalidBasicAuthConfig},
		{"apikey without keys", map[string]string{EnvAuthMode: "apikey"}, ErrInvalidAPIKeyConfig},
		{"jwt without secret", map[string]string{EnvAuthMode: "jwt"}, ErrInvalidJWTConfig},
		{"multi without config", map[string]string{EnvAuthMode: "multi"}, ErrInvalidMultiAuthConfig},
		{"event buffer zero", map[string]string{EnvEventBuffer: "0"}, ErrInvalidEventBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			cfg, err := Load("")

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if cfg != nil {
				t.Error("Load() should return nil config on error")
			}
		})
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{"invalid port", map[string]string{EnvServerPort: "not-a-number"}},
		{"invalid timeout", map[string]string{EnvShutdownTimeout: "soon"}},
		{"invalid bool", map[string]string{EnvMetricsEnabled: "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			clearEnvVars(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			// Act
			_, err := Load("")

			// Assert
			if err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	// Arrange
	clearEnvVars(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := strings.Join([]string{
		"server_port: 9191",
		"log_level: warn",
		"seed_medicines:",
		"  - Aspirin",
		"  - Paracetamol",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(EnvLogLevel, "debug")

	// Act
	cfg, err := Load(path)

	// Assert
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.ServerPort != 9191 {
		t.Errorf("ServerPort = %d, want 9191", cfg.ServerPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug (env overrides file)", cfg.LogLevel)
	}
	want := []string{"Aspirin", "Paracetamol"}
	if !reflect.DeepEqual(cfg.SeedMedicines, want) {
		t.Errorf("SeedMedicines = %v, want %v", cfg.SeedMedicines, want)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	// Arrange
	clearEnvVars(t)

	// Act
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	// Assert
	if err == nil {
		t.Error("Load() expected error for missing config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServerPort:      8080,
			LogLevel:        "info",
			ShutdownTimeout: time.Second,
			EventBuffer:     8,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(_ *Config) {}, nil},
		{"empty auth mode defaults to none", func(c *Config) { c.AuthMode = "" }, nil},
		{"empty seed name", func(c *Config) { c.SeedMedicines = []string{"A", ""} }, ErrInvalidSeedMedicines},
		{"zero timeout", func(c *Config) { c.ShutdownTimeout = 0 }, ErrInvalidShutdownTimeout},
		{"multi with api keys", func(c *Config) {
			c.AuthMode = "multi"
			c.APIKeys = "key:name"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := valid()
			tt.mutate(&cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{ServerPort: 3000}

	if got := cfg.Address(); got != ":3000" {
		t.Errorf("Address() = %s, want :3000", got)
	}
}
