package config

import (
	"os"
	"path/filepath"
)

// EnvPrefix is prepended to every environment variable override
const EnvPrefix = "HOOK_GUARDRAILS"

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	Framework: "claude",
	Logging: LoggingConfig{
		Level:   "info",
		Format:  "json",
		LogFile: "", // Empty = logging discarded, set path to enable file logging
	},
	Guards: GuardsConfig{
		Disabled: []string{},
	},
	Audit: AuditConfig{
		Enabled:   false,
		Protocols: []ProtocolConfig{},
	},
}

// GetDefaultConfigDir returns the default configuration directory
func GetDefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agent-hooks/guardrails"
	}
	return filepath.Join(home, ".agent-hooks/guardrails")
}
