package framework

import (
	"context"
	"io"

	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// HookFramework defines the interface for hook framework implementations
type HookFramework interface {
	// ParseInput reads and parses one hook event from stdin
	ParseInput(reader io.Reader) (types.ToolEvent, error)

	// FormatOutput formats a decision as JSON for the structured output channel
	FormatOutput(decision types.Decision) ([]byte, error)

	// GetExitCode returns the appropriate exit code for the framework based on the decision
	GetExitCode(decision types.Decision) int

	// GetName returns the framework name
	GetName() string
}

// HookHandler defines the interface for specific hook event handlers
type HookHandler interface {
	// ExtractEvent builds a tool event from the raw hook payload
	ExtractEvent(ctx context.Context, rawData map[string]any) (types.ToolEvent, error)

	// CanHandle returns true if this handler can process the given hook event
	CanHandle(hookEventName string) bool
}
