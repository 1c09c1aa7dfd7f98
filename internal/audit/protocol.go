package audit

import (
	"strings"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// Protocol represents an audit protocol with triggers and strategies
type Protocol struct {
	Name       string
	Triggers   config.TriggerConfig
	Strategies []config.StrategyConfig
}

// NewProtocol creates a new protocol from configuration
func NewProtocol(cfg config.ProtocolConfig) *Protocol {
	return &Protocol{
		Name:       cfg.Name,
		Triggers:   cfg.Triggers,
		Strategies: cfg.Strategies,
	}
}

// ShouldExecute determines if this protocol's triggers match the decision.
// A protocol fires on the verdicts it opts into, and when guard patterns are
// given, only for guards matching one of them.
func (p *Protocol) ShouldExecute(input types.AuditInput) bool {
	switch input.Decision.Verdict {
	case types.VerdictBlock:
		if !p.Triggers.OnBlock {
			return false
		}
	case types.VerdictWarn:
		if !p.Triggers.OnWarn {
			return false
		}
	default:
		return false
	}

	if len(p.Triggers.Guards) > 0 && !p.matchesGuard(input.Decision.Guard, p.Triggers.Guards) {
		return false
	}

	return true
}

// matchesGuard checks if the guard name matches any of the patterns
func (p *Protocol) matchesGuard(guardName string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesPattern(guardName, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks if a guard name matches a pattern (supports wildcards)
func matchesPattern(guardName string, pattern string) bool {
	// Simple wildcard matching: * matches any characters
	// Example: "commit-*" matches "commit-guard"

	if pattern == "*" {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return guardName == pattern
	}

	parts := strings.Split(pattern, "*")
	first, last := parts[0], parts[len(parts)-1]

	if !strings.HasPrefix(guardName, first) {
		return false
	}

	rest := guardName[len(first):]
	if len(rest) < len(last) || !strings.HasSuffix(rest, last) {
		return false
	}
	rest = rest[:len(rest)-len(last)]

	// Middle parts must appear in order between the prefix and suffix
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, part)
		if idx == -1 {
			return false
		}
		rest = rest[idx+len(part):]
	}

	return true
}
