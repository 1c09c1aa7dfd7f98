package config

// Config represents the application configuration
type Config struct {
	Framework string        `mapstructure:"framework" yaml:"framework"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Guards    GuardsConfig  `mapstructure:"guards" yaml:"guards"`
	Audit     AuditConfig   `mapstructure:"audit" yaml:"audit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// GuardsConfig controls which guards are active
type GuardsConfig struct {
	Disabled []string `mapstructure:"disabled" yaml:"disabled"`
}

// AuditConfig contains configuration for the decision audit trail
type AuditConfig struct {
	Enabled   bool             `mapstructure:"enabled" yaml:"enabled"`
	Protocols []ProtocolConfig `mapstructure:"protocols" yaml:"protocols"`
}

// ProtocolConfig defines when an audit protocol runs and what it does
type ProtocolConfig struct {
	Name       string           `mapstructure:"name" yaml:"name"`
	Triggers   TriggerConfig    `mapstructure:"triggers" yaml:"triggers"`
	Strategies []StrategyConfig `mapstructure:"strategies" yaml:"strategies"`
}

// TriggerConfig defines the verdicts and guards a protocol responds to
type TriggerConfig struct {
	OnBlock bool     `mapstructure:"on_block" yaml:"on_block"`
	OnWarn  bool     `mapstructure:"on_warn" yaml:"on_warn"`
	Guards  []string `mapstructure:"guards" yaml:"guards"` // Wildcard patterns, e.g. "commit-*"
}

// StrategyConfig holds the type and free-form settings of one audit strategy
type StrategyConfig struct {
	Type   string         `mapstructure:"type" yaml:"type"`
	Config map[string]any `mapstructure:"config" yaml:"config"`
}

// IsGuardDisabled reports whether the named guard is listed in guards.disabled
func (c *Config) IsGuardDisabled(name string) bool {
	for _, disabled := range c.Guards.Disabled {
		if disabled == name {
			return true
		}
	}
	return false
}
