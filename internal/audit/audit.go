// Package audit records guard verdicts through configurable protocols. It
// never influences the verdict or the message shown to the host.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// AuditStrategy defines the interface that all audit strategies must implement
type AuditStrategy interface {
	// Execute records the decision and returns the result
	Execute(ctx context.Context, input types.AuditInput) types.AuditResult

	// GetType returns the type identifier for this strategy (e.g., "log")
	GetType() string

	// Validate checks if the strategy configuration is valid
	Validate() error
}

// Engine orchestrates the execution of audit protocols
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *Registry
}

// NewEngine creates a new audit engine
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		registry: NewRegistry(),
	}
}

// RegisterStrategy registers a strategy with the engine
func (e *Engine) RegisterStrategy(strategy AuditStrategy) error {
	return e.registry.RegisterStrategy(strategy)
}

// Execute runs the first protocol whose triggers match the decision
func (e *Engine) Execute(ctx context.Context, input types.AuditInput) types.AuditResults {
	if !e.cfg.Audit.Enabled {
		e.logger.Debug("audit disabled, skipping")
		return types.AuditResults{Executed: false}
	}

	var protocol *Protocol
	for _, protocolCfg := range e.cfg.Audit.Protocols {
		p := NewProtocol(protocolCfg)
		if p.ShouldExecute(input) {
			protocol = p
			e.logger.Info("matched audit protocol", "protocol", p.Name)
			break
		}
	}

	if protocol == nil {
		e.logger.Debug("no audit protocol matched triggers")
		return types.AuditResults{Executed: false}
	}

	return e.executeProtocol(ctx, protocol, input)
}

// executeProtocol runs the protocol's strategies one after another in
// configuration order
func (e *Engine) executeProtocol(ctx context.Context, protocol *Protocol, input types.AuditInput) types.AuditResults {
	startTime := time.Now()

	results := make([]types.AuditResult, 0, len(protocol.Strategies))
	for _, strategyCfg := range protocol.Strategies {
		strategy, err := e.registry.GetStrategy(strategyCfg.Type)
		if err != nil {
			e.logger.Warn("unknown strategy type", "type", strategyCfg.Type, "error", err)
			results = append(results, types.AuditResult{
				StrategyType: strategyCfg.Type,
				Success:      false,
				Message:      fmt.Sprintf("Unknown strategy type: %s", strategyCfg.Type),
				Error:        err,
			})
			continue
		}

		results = append(results, e.executeStrategy(ctx, strategy, input))
	}

	totalDuration := time.Since(startTime)

	e.logger.Info("audit protocol completed",
		"protocol", protocol.Name,
		"strategies", len(results),
		"duration", totalDuration)

	return types.AuditResults{
		Executed:      true,
		Results:       results,
		TotalDuration: totalDuration,
		ProtocolName:  protocol.Name,
	}
}

// executeStrategy runs a single strategy with panic recovery
func (e *Engine) executeStrategy(ctx context.Context, strategy AuditStrategy, input types.AuditInput) (result types.AuditResult) {
	strategyType := strategy.GetType()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("strategy panicked", "type", strategyType, "panic", r)
			result = types.AuditResult{
				StrategyType: strategyType,
				Success:      false,
				Message:      "Strategy panicked during execution",
				Error:        errors.Newf("panic: %v", r),
			}
		}
	}()

	e.logger.Debug("executing strategy", "type", strategyType)

	startTime := time.Now()
	result = strategy.Execute(ctx, input)
	result.Duration = time.Since(startTime)
	result.StrategyType = strategyType

	e.logger.Debug("strategy completed",
		"type", strategyType,
		"success", result.Success,
		"duration", result.Duration)

	return result
}
