// Package config loads service settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// PathEnv names the YAML file to load. Unset means environment only.
const PathEnv = "MOLSELECTOR_CONFIG"

type Config struct {
	Server Server `yaml:"server"`
	Review Review `yaml:"review"`
	Audit  Audit  `yaml:"audit"`
	Log    Log    `yaml:"log"`
}

type Server struct {
	// Listen port
	Port int `yaml:"port" example:"8080" validate:"min=1,max=65535"`
	// Timeouts in seconds
	ReadTimeout     int `yaml:"read_timeout" example:"30" validate:"min=1"`
	WriteTimeout    int `yaml:"write_timeout" example:"30" validate:"min=1"`
	ShutdownTimeout int `yaml:"shutdown_timeout" example:"10" validate:"min=1"`
}

type Review struct {
	// Folder selected at startup and suggested to the client
	DefaultFolder string `yaml:"default_folder" example:"/data/molecules"`
}

type Audit struct {
	// Mirror decisions into the SQLite audit trail
	Enabled bool `yaml:"enabled" example:"true"`
	// SQLite database file
	Path string `yaml:"path" example:"./db/audit.db" validate:"required_if=Enabled true"`
}

type Log struct {
	Level string `yaml:"level" example:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Server: Server{
			Port:            8080,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 10,
		},
		Audit: Audit{
			Enabled: true,
			Path:    "./db/audit.db",
		},
		Log: Log{
			Level: "info",
		},
	}
}

func Load() (*Config, error) {
	result := Default()

	if path := os.Getenv(PathEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, oops.In("config").With("path", path).Errorf("failed to read config file: %w", err)
		}
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.In("config").With("path", path).Errorf("failed to parse YAML config: %w", err)
		}
	}

	applyEnv(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.In("config").Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvInt("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvInt("WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = getEnvInt("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Review.DefaultFolder = getEnv("MOLSELECTOR_DEFAULT_FOLDER", cfg.Review.DefaultFolder)
	cfg.Audit.Enabled = getEnvBool("AUDIT_ENABLED", cfg.Audit.Enabled)
	cfg.Audit.Path = getEnv("AUDIT_DB_PATH", cfg.Audit.Path)
	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
