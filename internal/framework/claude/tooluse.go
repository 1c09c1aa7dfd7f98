package claude

import (
	"context"

	"github.com/leefowlercu/agent-hook-guardrails/internal/framework"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// toolUseTypes are the hook events that carry a tool invocation. An empty
// event name is accepted for hosts that omit the field.
var toolUseTypes = map[string]bool{
	"":            true,
	"PreToolUse":  true,
	"PostToolUse": true,
}

// ToolUseHandler handles the PreToolUse and PostToolUse hooks
type ToolUseHandler struct{}

// Force compile-time check for interface implementation
var _ framework.HookHandler = (*ToolUseHandler)(nil)

// NewToolUseHandler creates a new tool-use handler
func NewToolUseHandler() *ToolUseHandler {
	return &ToolUseHandler{}
}

// ExtractEvent pulls the tool name, tool payload and transcript path from
// the raw hook data with empty defaults for anything absent or mistyped
func (h *ToolUseHandler) ExtractEvent(ctx context.Context, rawData map[string]any) (types.ToolEvent, error) {
	toolInput, _ := rawData["tool_input"].(map[string]any)

	return types.ToolEvent{
		ToolName: stringField(rawData, "tool_name"),
		ToolInput: types.ToolInput{
			Command:   stringField(toolInput, "command"),
			FilePath:  stringField(toolInput, "file_path"),
			Content:   stringField(toolInput, "content"),
			OldString: stringField(toolInput, "old_string"),
			NewString: stringField(toolInput, "new_string"),
		},
		TranscriptPath: stringField(rawData, "transcript_path"),
		SessionID:      stringField(rawData, "session_id"),
		HookEventName:  stringField(rawData, "hook_event_name"),
		RawData:        rawData,
	}, nil
}

// CanHandle returns true if this handler can process the given hook event
func (h *ToolUseHandler) CanHandle(hookEventName string) bool {
	return toolUseTypes[hookEventName]
}

// stringField returns m[key] when it is a string; a nil map yields ""
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
