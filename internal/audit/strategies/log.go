package strategies

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// LogStrategy implements an audit strategy that appends one line per decision to a file
type LogStrategy struct {
	logFile string // Path to log file (supports ~ expansion)
	format  string // "json" or "text"
}

// NewLogStrategy creates a new log strategy from configuration
func NewLogStrategy(cfg config.StrategyConfig) (*LogStrategy, error) {
	logFile, ok := cfg.Config["log_file"].(string)
	if !ok || logFile == "" {
		return nil, errors.New("log_file is required")
	}

	format, ok := cfg.Config["format"].(string)
	if !ok || format == "" {
		format = "json" // Default to JSON
	}

	strategy := &LogStrategy{
		logFile: logFile,
		format:  format,
	}

	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	return strategy, nil
}

// Execute writes the decision to the configured log file
func (s *LogStrategy) Execute(ctx context.Context, input types.AuditInput) types.AuditResult {
	// Check for context cancellation before starting
	select {
	case <-ctx.Done():
		return s.failure("Log operation cancelled", ctx.Err())
	default:
	}

	logPath, err := s.expandPath(s.logFile)
	if err != nil {
		return s.failure(fmt.Sprintf("Failed to expand log path: %v", err), err)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return s.failure(fmt.Sprintf("Failed to create log directory: %v", err), err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return s.failure(fmt.Sprintf("Failed to open log file: %v", err), err)
	}
	defer file.Close()

	var content string
	var formatErr error

	switch s.format {
	case "json":
		content, formatErr = s.formatJSON(input)
	case "text":
		content, formatErr = s.formatText(input)
	default:
		formatErr = errors.Newf("unsupported format: %s", s.format)
	}

	if formatErr != nil {
		return s.failure(fmt.Sprintf("Failed to format log content: %v", formatErr), formatErr)
	}

	if _, err := file.WriteString(content + "\n"); err != nil {
		return s.failure(fmt.Sprintf("Failed to write to log file: %v", err), err)
	}

	return types.AuditResult{
		StrategyType: s.GetType(),
		Success:      true,
		Message:      fmt.Sprintf("Logged %s decision to %s", input.Decision.Verdict, filepath.Base(logPath)),
		Metadata: map[string]any{
			"log_file": logPath,
			"format":   s.format,
			"verdict":  input.Decision.Verdict.String(),
		},
	}
}

// GetType returns the strategy type identifier
func (s *LogStrategy) GetType() string {
	return "log"
}

// Validate checks if the strategy configuration is valid
func (s *LogStrategy) Validate() error {
	if s.logFile == "" {
		return errors.New("log_file cannot be empty")
	}

	if s.format != "json" && s.format != "text" {
		return errors.Newf("format must be 'json' or 'text', got: %s", s.format)
	}

	return nil
}

func (s *LogStrategy) failure(message string, err error) types.AuditResult {
	return types.AuditResult{
		StrategyType: s.GetType(),
		Success:      false,
		Message:      message,
		Error:        err,
	}
}

// expandPath expands ~ to the user's home directory
func (s *LogStrategy) expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get home directory")
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// formatJSON formats the log entry as JSON
func (s *LogStrategy) formatJSON(input types.AuditInput) (string, error) {
	logEntry := map[string]any{
		"timestamp":  input.Timestamp.Format(time.RFC3339),
		"framework":  input.Framework,
		"session_id": input.Event.SessionID,
		"guard":      input.Decision.Guard,
		"verdict":    input.Decision.Verdict.String(),
		"tool_name":  input.Event.ToolName,
		"target":     target(input.Event),
		"title":      input.Decision.Title,
		"reason":     input.Decision.Reason,
	}

	data, err := json.Marshal(logEntry)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}

	return string(data), nil
}

// formatText formats the log entry as human-readable text
func (s *LogStrategy) formatText(input types.AuditInput) (string, error) {
	var sb strings.Builder

	timestamp := input.Timestamp.Format("2006-01-02 15:04:05")

	sb.WriteString(fmt.Sprintf("[%s] Framework: %s | Session: %s | Guard: %s | Verdict: %s",
		timestamp, input.Framework, input.Event.SessionID, input.Decision.Guard, input.Decision.Verdict))

	if t := target(input.Event); t != "" {
		sb.WriteString("\n  - ")
		sb.WriteString(input.Event.ToolName)
		sb.WriteString(": ")
		sb.WriteString(t)
	}

	if input.Decision.Title != "" {
		sb.WriteString("\n  - ")
		sb.WriteString(input.Decision.Title)
	}

	if input.Decision.Reason != "" {
		sb.WriteString("\n  - ")
		sb.WriteString(strings.ReplaceAll(input.Decision.Reason, "\n", " "))
	}

	return sb.String(), nil
}

// target identifies what the tool call acted on: the file path for file
// tools, otherwise the command
func target(event types.ToolEvent) string {
	if event.ToolInput.FilePath != "" {
		return event.ToolInput.FilePath
	}
	return event.ToolInput.Command
}
