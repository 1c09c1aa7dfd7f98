package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/leefowlercu/agent-hook-guardrails/internal/scope"
	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const assertionGuardName = "assertions"

// assertionFamilies are counted before and after an edit; any family losing
// occurrences blocks the edit
var assertionFamilies = textmatch.RuleSet{
	textmatch.MustRuleFold(`Assert.* calls`, `\bAssert\.\w+`),           // xUnit/NUnit/MSTest
	textmatch.MustRuleFold(`.Should*() assertions`, `\b\.Should\w*\(`),  // FluentAssertions
	textmatch.MustRuleFold(`Expect() calls`, `\bExpect\(`),              // Jest
	textmatch.MustRuleFold(`assert statements`, `\bassert\s+`),          // Python
	textmatch.MustRuleFold(`[Fact] attributes`, `\[Fact\]`),             // xUnit
	textmatch.MustRuleFold(`[Theory] attributes`, `\[Theory\]`),         // xUnit
	textmatch.MustRuleFold(`[Test] attributes`, `\[Test\]`),             // NUnit
	textmatch.MustRuleFold(`[TestMethod] attributes`, `\[TestMethod\]`), // MSTest
	textmatch.MustRuleFold(`@Test annotations`, `@Test\b`),              // JUnit
	textmatch.MustRuleFold(`it() blocks`, `\bit\(`),                     // Jest/Mocha
	textmatch.MustRuleFold(`describe() blocks`, `\bdescribe\(`),         // Jest/Mocha
}

// testMethodShape matches a public test method declaration
var testMethodShape = textmatch.MustRule("test methods", `public\s+(async\s+)?Task\s+\w+\s*\(`)

// commentPrefixes mark code that was commented out rather than fixed
var commentPrefixes = []string{"//", "// "}

var assertionBlockDetails = []string{
	"EXISTING TESTS ARE SACRED!",
	"",
	`What counts as "gutting" a test (NEVER do these):`,
	"- Removing or commenting out assertions",
	"- Removing test cases or edge cases",
	"- Changing expected values to match broken behavior",
	"- Commenting out or deleting tests",
	"",
	"If a test is failing, STOP and ASK:",
	"1. Should I fix the underlying issue?",
	"2. Add this to the bug list?",
	"3. Is this expected breakage from my changes?",
}

// AssertionGuard blocks test edits that reduce assertions, test annotations or
// test methods, or that comment test code out
type AssertionGuard struct {
	scope scope.Scope
}

// Force compile-time check for interface implementation
var _ Guard = (*AssertionGuard)(nil)

// NewAssertionGuard creates a new assertion-removal guard
func NewAssertionGuard() *AssertionGuard {
	return &AssertionGuard{scope: scope.TestFiles}
}

// Name returns the guard name
func (g *AssertionGuard) Name() string {
	return assertionGuardName
}

// Description returns the guard summary
func (g *AssertionGuard) Description() string {
	return "Block test edits that remove or comment out assertions and tests"
}

// Evaluate compares the replaced text of an edit with its replacement
func (g *AssertionGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	if !g.scope.Contains(event.ToolInput.FilePath) {
		return types.Allow(g.Name()), nil
	}

	oldText := event.ToolInput.OldString
	if oldText == "" {
		return types.Allow(g.Name()), nil
	}

	reason, found := assertionRemovalReason(oldText, event.ToolInput.NewString)
	if !found {
		return types.Allow(g.Name()), nil
	}

	return types.Decision{
		Verdict: types.VerdictBlock,
		Guard:   g.Name(),
		Title:   "BLOCKED: Test assertion removal detected",
		Reason:  reason,
		Details: assertionBlockDetails,
		Channel: types.ChannelExitCode,
	}, nil
}

// assertionRemovalReason checks family counts, commented-out code and test
// method counts, in that order
func assertionRemovalReason(oldText, newText string) (string, bool) {
	for _, delta := range assertionFamilies.Counts(oldText, newText) {
		if delta.Decreased() {
			return fmt.Sprintf("Removing %s (%d → %d)", delta.Rule.Label, delta.Before, delta.After), true
		}
	}

	if trimmed := strings.TrimSpace(oldText); trimmed != "" {
		for _, prefix := range commentPrefixes {
			if strings.Contains(newText, prefix+trimmed) {
				return "Commenting out test code instead of fixing it", true
			}
		}
	}

	before, after := testMethodShape.Count(oldText), testMethodShape.Count(newText)
	if before > 0 && after < before {
		return fmt.Sprintf("Removing test methods (%d → %d)", before, after), true
	}

	return "", false
}
