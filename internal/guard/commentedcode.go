package guard

import (
	"context"
	"fmt"

	"github.com/leefowlercu/agent-hook-guardrails/internal/scope"
	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const (
	commentedCodeGuardName = "commented-code"

	minConsecutiveCodeComments = 3
	minStatementComments       = 2
)

// workaroundPhrases are high-confidence markers of code disabled as a workaround
var workaroundPhrases = textmatch.RuleSet{
	textmatch.MustRuleFold("Explicit 'can't compile' comment", `//\s*(can'?t|cannot|doesn'?t|won'?t)\s+(compile|work|build)`),
	textmatch.MustRuleFold("TODO to fix commented code", `//\s*TODO:?\s*(fix|uncomment|re-?enable)`),
	textmatch.MustRuleFold("HACK comment", `//\s*HACK:?`),
	textmatch.MustRuleFold("Explicit 'commented out because'", `//\s*commented\s+out\s+(because|since|due)`),
	textmatch.MustRuleFold("Explicit 'disabled because'", `//\s*disabled\s+(because|since|due|for now)`),
	textmatch.MustRuleFold("Temporary removal", `//\s*temporarily\s+(removed|disabled|commented)`),
}

var (
	// codeCommentRun matches a run of comment lines whose text reads like statements
	codeCommentRun = textmatch.MustRule(
		"commented-out code block",
		fmt.Sprintf(
			`(?m)(?:^[ \t]*//[ \t]*(?:var|return|await|if|else|for|foreach|while|try|catch|throw|new|this\.|_\w+\.|[a-z]+\.[A-Z]).*$\n?){%d,}`,
			minConsecutiveCodeComments,
		),
	)

	// statementComment matches a single commented assignment or call ending in ; or {
	statementComment = textmatch.MustRule(
		"commented-out statement",
		`(?m)^[ \t]*//[ \t]*(await\s+)?\w+\s*[.=]\s*\w+.*[;{][ \t]*$`,
	)
)

var commentedCodeWarnDetails = []string{
	"Is this code commented out because it doesn't compile/work?",
	"",
	"If YES - this is a workaround. STOP and consider:",
	"- Fix the underlying issue",
	"- Delete the code entirely if not needed",
	"- Ask for guidance if stuck",
	"",
	"If NO - this is intentional pseudocode/documentation:",
	"- Proceed (this warning is just a reminder)",
}

// CommentedCodeGuard warns when source content carries commented-out code
// that looks like an abandoned workaround. It never blocks.
type CommentedCodeGuard struct {
	scope scope.Scope
}

// Force compile-time check for interface implementation
var _ Guard = (*CommentedCodeGuard)(nil)

// NewCommentedCodeGuard creates a new commented-code guard
func NewCommentedCodeGuard() *CommentedCodeGuard {
	return &CommentedCodeGuard{scope: scope.SourceFiles}
}

// Name returns the guard name
func (g *CommentedCodeGuard) Name() string {
	return commentedCodeGuardName
}

// Description returns the guard summary
func (g *CommentedCodeGuard) Description() string {
	return "Warn about commented-out code that looks like a workaround"
}

// Evaluate inspects the new content of a source file
func (g *CommentedCodeGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	if !g.scope.Contains(event.ToolInput.FilePath) {
		return types.Allow(g.Name()), nil
	}

	content := event.NewText()
	if content == "" {
		return types.Allow(g.Name()), nil
	}

	reason, found := commentedCodeReason(content)
	if !found {
		return types.Allow(g.Name()), nil
	}

	return types.Decision{
		Verdict: types.VerdictWarn,
		Guard:   g.Name(),
		Title:   "WARNING: Possible commented-out code workaround",
		Reason:  "Detected: " + reason,
		Details: commentedCodeWarnDetails,
		Channel: types.ChannelExitCode,
	}, nil
}

func commentedCodeReason(content string) (string, bool) {
	if phrase, ok := workaroundPhrases.First(content); ok {
		return phrase.Label, true
	}

	if blocks := codeCommentRun.Count(content); blocks > 0 {
		return fmt.Sprintf("Multiple lines of commented-out code (%d blocks)", blocks), true
	}

	if statements := statementComment.Count(content); statements >= minStatementComments {
		return fmt.Sprintf("Commented-out statements (%d found)", statements), true
	}

	return "", false
}
