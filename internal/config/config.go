package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitConfig initializes the configuration using Viper. An explicit
// configPath replaces the default search locations.
func InitConfig(configPath string) error {
	// Load .env file if it exists (fail silently if not found)
	loadEnvFiles()

	SetDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetDefaultConfigDir())
		viper.AddConfigPath(".")
	}

	// Enable environment variable overrides
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (it's okay if it doesn't exist)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config")
		}
	}

	return nil
}

// SetDefaults registers the built-in defaults with Viper
func SetDefaults() {
	viper.SetDefault("framework", DefaultConfig.Framework)
	viper.SetDefault("logging.level", DefaultConfig.Logging.Level)
	viper.SetDefault("logging.format", DefaultConfig.Logging.Format)
	viper.SetDefault("logging.log_file", DefaultConfig.Logging.LogFile)
	viper.SetDefault("guards.disabled", DefaultConfig.Guards.Disabled)
	viper.SetDefault("audit.enabled", DefaultConfig.Audit.Enabled)
	viper.SetDefault("audit.protocols", DefaultConfig.Audit.Protocols)
}

// GetConfig returns the current configuration
func GetConfig() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// Defaults returns a copy of the built-in configuration, used when the
// configured sources cannot be read
func Defaults() *Config {
	cfg := DefaultConfig
	cfg.Guards.Disabled = []string{}
	cfg.Audit.Protocols = []ProtocolConfig{}
	return &cfg
}

// loadEnvFiles loads environment variables from .env files
// It tries multiple locations and fails silently if files don't exist
func loadEnvFiles() {
	// Try to load .env files from multiple locations
	locations := []string{
		".env", // Current directory
		filepath.Join(GetDefaultConfigDir(), ".env"), // Config directory (~/.agent-hooks/guardrails/.env)
	}

	// Also try .env.local for local overrides
	localLocations := []string{
		".env.local",
		filepath.Join(GetDefaultConfigDir(), ".env.local"),
	}

	// Load .env files first
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			_ = godotenv.Load(location) // Fail silently
		}
	}

	// Load .env.local files (override .env)
	for _, location := range localLocations {
		if _, err := os.Stat(location); err == nil {
			_ = godotenv.Overload(location) // Fail silently
		}
	}
}
