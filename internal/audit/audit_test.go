package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

type recordingStrategy struct {
	strategyType string
	calls        *[]string
	panics       bool
}

func (s *recordingStrategy) Execute(ctx context.Context, input types.AuditInput) types.AuditResult {
	*s.calls = append(*s.calls, s.strategyType)
	if s.panics {
		panic("boom")
	}
	return types.AuditResult{Success: true, Message: "recorded " + input.Decision.Guard}
}

func (s *recordingStrategy) GetType() string { return s.strategyType }
func (s *recordingStrategy) Validate() error { return nil }

func newTestEngine(t *testing.T, cfg *config.Config, calls *[]string, strategies ...*recordingStrategy) *Engine {
	t.Helper()

	e := NewEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, s := range strategies {
		s.calls = calls
		if err := e.RegisterStrategy(s); err != nil {
			t.Fatalf("RegisterStrategy(%s) error = %v", s.strategyType, err)
		}
	}
	return e
}

func blockInput(guard string) types.AuditInput {
	return types.AuditInput{Decision: types.Decision{Verdict: types.VerdictBlock, Guard: guard}}
}

func TestEngine_Disabled(t *testing.T) {
	cfg := &config.Config{Audit: config.AuditConfig{
		Enabled: false,
		Protocols: []config.ProtocolConfig{
			{Name: "all", Triggers: config.TriggerConfig{OnBlock: true}, Strategies: []config.StrategyConfig{{Type: "first"}}},
		},
	}}

	var calls []string
	e := newTestEngine(t, cfg, &calls, &recordingStrategy{strategyType: "first"})

	if results := e.Execute(context.Background(), blockInput("assertions")); results.Executed {
		t.Error("Execute() ran with audit disabled")
	}
	if len(calls) != 0 {
		t.Errorf("strategies called = %v, want none", calls)
	}
}

func TestEngine_RunsFirstMatchingProtocolInOrder(t *testing.T) {
	cfg := &config.Config{Audit: config.AuditConfig{
		Enabled: true,
		Protocols: []config.ProtocolConfig{
			{
				Name:       "warnings",
				Triggers:   config.TriggerConfig{OnWarn: true},
				Strategies: []config.StrategyConfig{{Type: "third"}},
			},
			{
				Name:       "blocks",
				Triggers:   config.TriggerConfig{OnBlock: true},
				Strategies: []config.StrategyConfig{{Type: "second"}, {Type: "missing"}, {Type: "first"}},
			},
			{
				Name:       "catch-all",
				Triggers:   config.TriggerConfig{OnBlock: true, OnWarn: true},
				Strategies: []config.StrategyConfig{{Type: "third"}},
			},
		},
	}}

	var calls []string
	e := newTestEngine(t, cfg, &calls,
		&recordingStrategy{strategyType: "first"},
		&recordingStrategy{strategyType: "second"},
		&recordingStrategy{strategyType: "third"},
	)

	results := e.Execute(context.Background(), blockInput("commit-guard"))
	if !results.Executed {
		t.Fatal("Execute() did not run a protocol")
	}
	if results.ProtocolName != "blocks" {
		t.Errorf("ProtocolName = %q, want %q", results.ProtocolName, "blocks")
	}

	if len(calls) != 2 || calls[0] != "second" || calls[1] != "first" {
		t.Errorf("strategies called = %v, want [second first]", calls)
	}

	if len(results.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(results.Results))
	}
	if missing := results.Results[1]; missing.Success || !errors.Is(missing.Error, ErrStrategyNotFound) {
		t.Errorf("missing strategy result = %+v, want ErrStrategyNotFound failure", missing)
	}
	if results.Results[0].StrategyType != "second" || !results.Results[0].Success {
		t.Errorf("first result = %+v", results.Results[0])
	}
}

func TestEngine_RecoversFromPanic(t *testing.T) {
	cfg := &config.Config{Audit: config.AuditConfig{
		Enabled: true,
		Protocols: []config.ProtocolConfig{
			{
				Name:       "blocks",
				Triggers:   config.TriggerConfig{OnBlock: true},
				Strategies: []config.StrategyConfig{{Type: "panicky"}, {Type: "steady"}},
			},
		},
	}}

	var calls []string
	e := newTestEngine(t, cfg, &calls,
		&recordingStrategy{strategyType: "panicky", panics: true},
		&recordingStrategy{strategyType: "steady"},
	)

	results := e.Execute(context.Background(), blockInput("assertions"))
	if len(results.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(results.Results))
	}
	if results.Results[0].Success || results.Results[0].Error == nil {
		t.Errorf("panicking strategy result = %+v, want failure", results.Results[0])
	}
	if !results.Results[1].Success {
		t.Errorf("strategy after panic result = %+v, want success", results.Results[1])
	}
}

func TestRegistry_RegisterStrategy(t *testing.T) {
	var calls []string
	r := NewRegistry()

	if err := r.RegisterStrategy(nil); err == nil {
		t.Error("RegisterStrategy(nil) succeeded")
	}
	if err := r.RegisterStrategy(&recordingStrategy{strategyType: "", calls: &calls}); err == nil {
		t.Error("RegisterStrategy(empty type) succeeded")
	}
	if err := r.RegisterStrategy(&recordingStrategy{strategyType: "b", calls: &calls}); err != nil {
		t.Fatalf("RegisterStrategy(b) error = %v", err)
	}
	if err := r.RegisterStrategy(&recordingStrategy{strategyType: "a", calls: &calls}); err != nil {
		t.Fatalf("RegisterStrategy(a) error = %v", err)
	}
	if err := r.RegisterStrategy(&recordingStrategy{strategyType: "a", calls: &calls}); err == nil {
		t.Error("duplicate RegisterStrategy(a) succeeded")
	}

	if got := r.ListStrategies(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ListStrategies() = %v, want [a b]", got)
	}
}
