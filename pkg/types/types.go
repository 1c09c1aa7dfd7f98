package types

import "time"

// ToolInput holds the tool-specific payload of a hook event
type ToolInput struct {
	Command   string `json:"command"`    // Bash
	FilePath  string `json:"file_path"`  // Write, Edit
	Content   string `json:"content"`    // Write
	OldString string `json:"old_string"` // Edit
	NewString string `json:"new_string"` // Edit
}

// ToolEvent represents a single proposed tool action received from the host
type ToolEvent struct {
	ToolName       string         // Tool being invoked (e.g., "Bash", "Write", "Edit")
	ToolInput      ToolInput      // Tool payload, zero-valued when absent
	TranscriptPath string         // Path to the conversation transcript, may be empty
	SessionID      string         // Host session identifier, may be empty
	HookEventName  string         // Host hook event (e.g., "PreToolUse")
	RawData        map[string]any // Raw JSON data from stdin
}

// NewText returns the text being introduced by the event: the full content for
// a write, otherwise the replacement fragment of an edit
func (e ToolEvent) NewText() string {
	if e.ToolInput.Content != "" {
		return e.ToolInput.Content
	}
	return e.ToolInput.NewString
}

// Verdict is the outcome of evaluating one event
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictWarn
	VerdictBlock
)

// String returns the lower-case verdict name
func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictWarn:
		return "warn"
	case VerdictBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Channel selects how a blocking decision is communicated to the host
type Channel int

const (
	// ChannelExitCode blocks with a distinguished exit status and a message on stderr
	ChannelExitCode Channel = iota

	// ChannelStructured blocks with a JSON decision object on stdout and exit status 0
	ChannelStructured
)

// Decision represents the hook's verdict on whether to proceed, warn, or block
type Decision struct {
	Verdict Verdict  // Allow, Warn or Block
	Guard   string   // Name of the guard that produced the decision
	Title   string   // Headline of the message (e.g., "BLOCKED: ...")
	Reason  string   // Signal-specific explanation
	Details []string // Additional guidance lines, empty strings render as blank lines
	Channel Channel  // Output channel for blocking decisions
}

// Allow returns a silent allow decision for the named guard
func Allow(guard string) Decision {
	return Decision{Verdict: VerdictAllow, Guard: guard}
}

// IsSilent reports whether the decision produces no output
func (d Decision) IsSilent() bool {
	return d.Verdict == VerdictAllow
}

// TranscriptMessage is the nested message of a transcript record
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or sequence of blocks
}

// TranscriptRecord represents one line of a newline-delimited JSON transcript
type TranscriptRecord struct {
	Type    string             `json:"type"`
	Message *TranscriptMessage `json:"message,omitempty"`
	Content any                `json:"content,omitempty"` // legacy top-level content
}

// AuditInput contains all context needed by audit strategies
type AuditInput struct {
	Event     ToolEvent // Original hook event
	Decision  Decision  // Decision made by the guard
	Timestamp time.Time // When the audit is being executed
	Framework string    // Framework name for context
}

// AuditResult represents the result of executing a single audit strategy
type AuditResult struct {
	StrategyType string         // Type of strategy that executed (e.g., "log")
	Success      bool           // Whether the strategy executed successfully
	Message      string         // Summary message
	Duration     time.Duration  // How long the strategy took to execute
	Metadata     map[string]any // Additional metadata from the strategy
	Error        error          // Error if the strategy failed
}

// AuditResults represents the aggregate results from executing an audit protocol
type AuditResults struct {
	Executed      bool          // Whether an audit protocol was executed
	Results       []AuditResult // Individual strategy results
	TotalDuration time.Duration // Total time for all strategies
	ProtocolName  string        // Name of the protocol that was executed
}
