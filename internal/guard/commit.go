package guard

import (
	"context"
	"log/slog"

	"github.com/leefowlercu/agent-hook-guardrails/internal/decision"
	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/internal/transcript"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const (
	commitGuardName = "commit-guard"

	// commandEchoLength is how much of the offending command the block message repeats
	commandEchoLength = 50
)

// commitCommandRules recognise the version-control actions the guard is scoped to
var commitCommandRules = textmatch.RuleSet{
	textmatch.MustRuleFold("git commit", textmatch.Word("git commit")),
	textmatch.MustRuleFold("git push", textmatch.Word("git push")),
	textmatch.MustRuleFold("git --amend", `\bgit\s+.*--amend\b`),
}

// explicitRequestRules recognise a user asking for a commit, push, PR or merge.
// They are applied to lower-cased text and match incidental mentions too.
var explicitRequestRules = textmatch.RuleSet{
	textmatch.MustRule("commit", textmatch.Word("commit")),
	textmatch.MustRule("push", textmatch.Word("push")),
	textmatch.MustRule("git commit", textmatch.Word("git commit")),
	textmatch.MustRule("git push", textmatch.Word("git push")),
	textmatch.MustRule("create pr", `\bcreate\s+(a\s+)?pr\b`),
	textmatch.MustRule("create pull request", `\bcreate\s+(a\s+)?pull\s*request\b`),
	textmatch.MustRule("merge", textmatch.Word("merge")),
}

var commitBlockDetails = []string{
	"No explicit commit/push request found in conversation.",
	"",
	"REMINDER: Do NOT commit or push unless explicitly requested.",
	"",
	"- Each commit request is a ONE-TIME action",
	"- Always let the user review changes first",
	"- Never auto-commit subsequent changes",
	"",
	`ASK: "Would you like me to commit these changes?"`,
}

// CommitGuard blocks git commit, push and amend commands unless the user
// asked for one somewhere in the conversation transcript
type CommitGuard struct {
	logger   *slog.Logger
	scanner  *transcript.Scanner
	commands textmatch.RuleSet
	requests textmatch.RuleSet
}

// Force compile-time check for interface implementation
var _ Guard = (*CommitGuard)(nil)

// NewCommitGuard creates a new commit/push guard
func NewCommitGuard(logger *slog.Logger) *CommitGuard {
	return &CommitGuard{
		logger:   logger,
		scanner:  transcript.NewScanner(),
		commands: commitCommandRules,
		requests: explicitRequestRules,
	}
}

// Name returns the guard name
func (g *CommitGuard) Name() string {
	return commitGuardName
}

// Description returns the guard summary
func (g *CommitGuard) Description() string {
	return "Block git commit/push/--amend unless the user explicitly asked for it"
}

// Evaluate checks a shell command against the commit/push shapes and, when it
// matches, requires positive evidence of consent in the transcript
func (g *CommitGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	command := event.ToolInput.Command

	action, ok := g.commands.First(command)
	if !ok {
		return types.Allow(g.Name()), nil
	}

	g.logger.Debug("commit/push command detected", "action", action.Label)

	if g.userRequested(event.TranscriptPath) {
		return types.Allow(g.Name()), nil
	}

	return types.Decision{
		Verdict: types.VerdictBlock,
		Guard:   g.Name(),
		Title:   "BLOCKED: Git commit/push requires explicit user request",
		Reason:  "Command: " + decision.Truncate(command, commandEchoLength),
		Details: commitBlockDetails,
		Channel: types.ChannelExitCode,
	}, nil
}

// userRequested reports whether any user record in the transcript matches an
// explicit request pattern. An absent or unreadable transcript counts as no
// request, so uncertainty resolves toward blocking.
func (g *CommitGuard) userRequested(path string) bool {
	match, ok, err := g.scanner.FindUserMatch(path, g.requests)
	if err != nil {
		g.logger.Info("transcript unavailable, treating as no explicit request",
			"transcript_path", path,
			"error", err)
		return false
	}

	if ok {
		g.logger.Info("explicit request found in transcript",
			"line", match.Line,
			"pattern", match.Rule.Label)
	}

	return ok
}
