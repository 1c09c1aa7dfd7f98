package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/decision"
	"github.com/leefowlercu/agent-hook-guardrails/internal/framework"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const (
	frameworkName = "claude"

	// blockExitCode tells the host the tool call must not proceed
	blockExitCode = 2
)

// ErrInvalidInput is returned when stdin does not hold a JSON object
var ErrInvalidInput = errors.New("invalid hook input")

// Framework implements the HookFramework interface for Claude Code
type Framework struct {
	handlers []framework.HookHandler
}

// Force compile-time check for interface implementation
var _ framework.HookFramework = (*Framework)(nil)

// NewFramework creates a new Claude framework instance
func NewFramework() *Framework {
	f := &Framework{
		handlers: []framework.HookHandler{},
	}

	// Register default handlers
	f.RegisterHandler(NewToolUseHandler())

	return f
}

// RegisterHandler registers a hook handler with the framework
func (f *Framework) RegisterHandler(handler framework.HookHandler) {
	f.handlers = append(f.handlers, handler)
}

// GetHandler returns the appropriate handler for the given hook event name
func (f *Framework) GetHandler(hookEventName string) (framework.HookHandler, error) {
	for _, handler := range f.handlers {
		if handler.CanHandle(hookEventName) {
			return handler, nil
		}
	}
	return nil, errors.Newf("no handler found for hook event %q", hookEventName)
}

// ParseInput reads one JSON object from stdin and converts it to a tool event.
// Absent or wrongly typed fields are left empty; only input that is not a
// JSON object, or an event no handler understands, is an error.
func (f *Framework) ParseInput(reader io.Reader) (types.ToolEvent, error) {
	var rawData map[string]any

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&rawData); err != nil {
		return types.ToolEvent{}, errors.Mark(errors.Wrap(err, "failed to decode JSON input"), ErrInvalidInput)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return types.ToolEvent{}, errors.Wrap(ErrInvalidInput, "trailing data after JSON object")
	}
	if rawData == nil {
		return types.ToolEvent{}, errors.Wrap(ErrInvalidInput, "input is null")
	}

	hookEventName, _ := rawData["hook_event_name"].(string)

	handler, err := f.GetHandler(hookEventName)
	if err != nil {
		return types.ToolEvent{}, err
	}

	return handler.ExtractEvent(context.Background(), rawData)
}

// FormatOutput formats a blocking decision as the structured JSON object
func (f *Framework) FormatOutput(d types.Decision) ([]byte, error) {
	if d.Verdict != types.VerdictBlock {
		return nil, errors.Newf("cannot format %s decision as structured output", d.Verdict)
	}

	output := HookOutput{
		Decision: "block",
		Reason:   decision.Reason(d),
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(output); err != nil {
		return nil, errors.Wrap(err, "failed to marshal output")
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// GetExitCode returns 2 for blocks delivered through the exit code and 0
// otherwise; structured blocks are carried by stdout
func (f *Framework) GetExitCode(d types.Decision) int {
	if d.Verdict == types.VerdictBlock && d.Channel == types.ChannelExitCode {
		return blockExitCode
	}
	return 0
}

// GetName returns the framework name
func (f *Framework) GetName() string {
	return frameworkName
}
