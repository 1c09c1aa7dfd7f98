package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/audit"
	"github.com/leefowlercu/agent-hook-guardrails/internal/audit/strategies"
	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/internal/decision"
	"github.com/leefowlercu/agent-hook-guardrails/internal/framework"
	"github.com/leefowlercu/agent-hook-guardrails/internal/framework/claude"
	"github.com/leefowlercu/agent-hook-guardrails/internal/guard"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

func init() {
	framework.RegisterFramework("claude", claude.NewFramework())
}

// Processor orchestrates the handling of one hook invocation
type Processor struct {
	cfg         *config.Config
	logger      *slog.Logger
	guards      *guard.Registry
	auditEngine *audit.Engine
}

// NewProcessor creates a new processor instance
func NewProcessor(cfg *config.Config, logger *slog.Logger) *Processor {
	auditEngine := audit.NewEngine(cfg, logger)

	// Strategy types are registered from the configured protocols and shared
	// by every protocol that names them
	registerAuditStrategies(auditEngine, cfg, logger)

	return &Processor{
		cfg:         cfg,
		logger:      logger,
		guards:      guard.NewDefaultRegistry(logger),
		auditEngine: auditEngine,
	}
}

// registerAuditStrategies registers all configured audit strategies
func registerAuditStrategies(engine *audit.Engine, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Audit.Enabled {
		return
	}

	for _, protocol := range cfg.Audit.Protocols {
		for _, strategyCfg := range protocol.Strategies {
			switch strategyCfg.Type {
			case "log":
				logStrategy, err := strategies.NewLogStrategy(strategyCfg)
				if err != nil {
					logger.Warn("failed to create log strategy", "error", err)
					continue
				}
				if err := engine.RegisterStrategy(logStrategy); err != nil {
					logger.Warn("failed to register log strategy", "error", err)
				}
			default:
				logger.Warn("unknown strategy type", "type", strategyCfg.Type)
			}
		}
	}
}

// Process runs the named guard against the event on stdin and returns the
// process exit code. cfg may be nil, in which case defaults apply.
func Process(stdin io.Reader, stdout, stderr io.Writer, cfg *config.Config, guardName string) (int, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}

	logger := setupLogger(cfg, stderr)

	proc := NewProcessor(cfg, logger)

	return proc.ProcessHook(context.Background(), stdin, stdout, stderr, guardName)
}

// ProcessHook processes a single hook invocation. Only failures outside the
// hook contract (unknown guard, unwritable output) are returned
// as errors; malformed input allows silently.
func (p *Processor) ProcessHook(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, guardName string) (int, error) {
	p.logger.Info("processing hook request", "guard", guardName, "framework", p.cfg.Framework)

	g, err := p.guards.Get(guardName)
	if err != nil {
		return 1, err
	}

	fw, err := framework.GetFramework(p.cfg.Framework)
	if err != nil {
		p.logger.Warn("unknown framework, using default",
			"framework", p.cfg.Framework,
			"default", config.DefaultConfig.Framework,
			"available", framework.ListFrameworks(),
			"error", err)
		fmt.Fprintf(stderr, "hook-guardrails: unknown framework %q; using %s\n", p.cfg.Framework, config.DefaultConfig.Framework)
		if fw, err = framework.GetFramework(config.DefaultConfig.Framework); err != nil {
			return 0, err
		}
	}

	rawInput, err := io.ReadAll(stdin)
	if err != nil {
		p.logger.Error("failed to read stdin, allowing", "error", err)
		return 0, nil
	}

	event, err := fw.ParseInput(bytes.NewReader(rawInput))
	if err != nil {
		p.logger.Warn("failed to parse input, allowing", "error", err)
		return 0, nil
	}

	p.logger.Info("parsed hook input",
		"tool_name", event.ToolName,
		"hook_event", event.HookEventName)

	if p.cfg.IsGuardDisabled(g.Name()) {
		p.logger.Info("guard disabled by configuration, allowing", "guard", g.Name())
		return 0, nil
	}

	d, err := g.Evaluate(ctx, event)
	if err != nil {
		p.logger.Error("guard evaluation failed, allowing", "guard", g.Name(), "error", err)
		return 0, nil
	}

	p.logger.Info("decision made",
		"guard", d.Guard,
		"verdict", d.Verdict.String())

	p.audit(ctx, event, d, fw.GetName())

	if err := p.emit(fw, d, stdout, stderr); err != nil {
		p.logger.Error("failed to write output", "error", err)
		return 0, err
	}

	exitCode := fw.GetExitCode(d)

	p.logger.Info("hook processing completed", "exit_code", exitCode)

	return exitCode, nil
}

// audit runs the audit protocols; results are logged only
func (p *Processor) audit(ctx context.Context, event types.ToolEvent, d types.Decision, frameworkName string) {
	if d.IsSilent() {
		return
	}

	results := p.auditEngine.Execute(ctx, types.AuditInput{
		Event:     event,
		Decision:  d,
		Timestamp: time.Now(),
		Framework: frameworkName,
	})

	if !results.Executed {
		return
	}

	for _, result := range results.Results {
		p.logger.Info("audit strategy result",
			"protocol", results.ProtocolName,
			"type", result.StrategyType,
			"success", result.Success,
			"message", result.Message)
	}
}

// emit writes the decision to its channel: structured blocks as JSON on
// stdout, everything else that is not silent as a box on stderr
func (p *Processor) emit(fw framework.HookFramework, d types.Decision, stdout, stderr io.Writer) error {
	if d.IsSilent() {
		return nil
	}

	if d.Verdict == types.VerdictBlock && d.Channel == types.ChannelStructured {
		output, err := fw.FormatOutput(d)
		if err != nil {
			return errors.Wrap(err, "failed to format output")
		}

		if _, err := stdout.Write(append(output, '\n')); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
		return nil
	}

	if _, err := io.WriteString(stderr, decision.Render(d)); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

// setupLogger creates and configures the logger based on configuration
// Logs are written to file only (not stderr) to avoid interfering with hook framework IO
func setupLogger(cfg *config.Config, stderr io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Determine output writer - file only, no stderr
	var output io.Writer

	if cfg.Logging.LogFile != "" {
		logFile, err := openLogFile(cfg.Logging.LogFile)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log file %s: %v\n", cfg.Logging.LogFile, err)
			output = io.Discard
		} else {
			output = logFile
		}
	} else {
		// No log file configured - disable logging
		output = io.Discard
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// openLogFile opens or creates a log file for writing
func openLogFile(path string) (*os.File, error) {
	// Expand ~ to home directory if present
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		path = filepath.Join(home, path[1:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open log file")
	}

	return file, nil
}
