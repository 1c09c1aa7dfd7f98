package guard

import (
	"context"
	"fmt"

	"github.com/leefowlercu/agent-hook-guardrails/internal/scope"
	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const testDoubleGuardName = "test-double"

// copiedLogicPhrases are admissions that code was lifted from production
var copiedLogicPhrases = textmatch.RuleSet{
	textmatch.MustRuleFold(`copied\s+from`, `copied\s+from`),
	textmatch.MustRuleFold(`copy\s+of`, `copy\s+of`),
	textmatch.MustRuleFold(`duplicated?\s+from`, `duplicated?\s+from`),
	textmatch.MustRuleFold(`same\s+as\s+production`, `same\s+as\s+production`),
	textmatch.MustRuleFold(`mirrors?\s+the\s+(real|actual|production)`, `mirrors?\s+the\s+(real|actual|production)`),
}

var (
	// testDoubleWithMethods matches a private *TestDouble* class that declares a method with a body
	testDoubleWithMethods = textmatch.MustRuleFold(
		"TestDouble class with method implementations",
		`(?s)private\s+class\s+\w*TestDouble\w*\s*\{[^}]*(?:public|private|protected)\s+\w+\s+\w+\s*\([^)]*\)\s*(?:=>|\{)`,
	)

	// privateClassComparison matches a private class returning a comparison expression
	privateClassComparison = textmatch.MustRule(
		"private class with comparison logic",
		`(?s)private\s+class\s+\w+\s*\{[^}]*return\s+[^;]+\s*[!=<>]+\s*[^;]+;`,
	)
)

var testDoubleBlockDetails = []string{
	"STOP! This may violate the testing principle:",
	`"Test production code, not copies of it"`,
	"",
	"Before proceeding, ask yourself:",
	"- Am I testing the REAL production code?",
	"- Or am I testing a copy that won't catch real bugs?",
	"",
	"If you hit an obstacle (code isn't testable), STOP and ASK:",
	"1. Can the production code be refactored for testability?",
	"2. Should this be an integration test instead?",
	"3. Is there a KnockOff pattern that works?",
}

// TestDoubleGuard blocks test-file writes that duplicate production logic
// into a helper instead of exercising the real implementation
type TestDoubleGuard struct {
	scope scope.Scope
}

// Force compile-time check for interface implementation
var _ Guard = (*TestDoubleGuard)(nil)

// NewTestDoubleGuard creates a new copied-logic guard
func NewTestDoubleGuard() *TestDoubleGuard {
	return &TestDoubleGuard{scope: scope.TestArea}
}

// Name returns the guard name
func (g *TestDoubleGuard) Name() string {
	return testDoubleGuardName
}

// Description returns the guard summary
func (g *TestDoubleGuard) Description() string {
	return "Block test doubles that copy production logic"
}

// Evaluate checks the new content of a test file for copied-logic signals
func (g *TestDoubleGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	if !g.scope.Contains(event.ToolInput.FilePath) {
		return types.Allow(g.Name()), nil
	}

	content := event.NewText()
	if content == "" {
		return types.Allow(g.Name()), nil
	}

	reason, found := copiedLogicReason(content)
	if !found {
		return types.Allow(g.Name()), nil
	}

	return types.Decision{
		Verdict: types.VerdictBlock,
		Guard:   g.Name(),
		Title:   "BLOCKED: Possible copied production logic detected",
		Reason:  reason,
		Details: testDoubleBlockDetails,
		Channel: types.ChannelExitCode,
	}, nil
}

// copiedLogicReason evaluates the three independent signals in order
func copiedLogicReason(content string) (string, bool) {
	if phrase, ok := copiedLogicPhrases.First(content); ok {
		return fmt.Sprintf("Contains comment indicating copied logic (pattern: '%s')", phrase.Label), true
	}

	if testDoubleWithMethods.Match(content) {
		return "Contains a TestDouble class with method implementations - this may be copying production logic", true
	}

	if privateClassComparison.Match(content) {
		return "Contains a private class with return statements that include comparison logic - may be copying production logic", true
	}

	return "", false
}
