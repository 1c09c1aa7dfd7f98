package guard

import (
	"context"
	"regexp"
	"strings"

	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const (
	snippetGuardName = "snippet-markers"

	snippetOpenMarker  = "<!-- snippet:"
	snippetCloseMarker = "<!-- /snippet -->"

	editToolName = "Edit"
)

var (
	snippetIDPattern   = regexp.MustCompile(`<!-- snippet: (\S+) -->`)
	snippetBodyPattern = regexp.MustCompile(`(?s)<!-- snippet:[^>]+-->(.*?)<!-- /snippet -->`)
)

// SnippetGuard protects synced documentation snippets from partial edits that
// would orphan one of their markers
type SnippetGuard struct{}

// Force compile-time check for interface implementation
var _ Guard = (*SnippetGuard)(nil)

// NewSnippetGuard creates a new snippet-marker guard
func NewSnippetGuard() *SnippetGuard {
	return &SnippetGuard{}
}

// Name returns the guard name
func (g *SnippetGuard) Name() string {
	return snippetGuardName
}

// Description returns the guard summary
func (g *SnippetGuard) Description() string {
	return "Block edits that remove only one snippet marker; warn on in-place snippet edits"
}

// Evaluate applies the marker rules in priority order: whole-snippet removal
// is allowed, a lone opening or closing marker removal is blocked, and a
// change strictly between preserved markers is a warning
func (g *SnippetGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	if event.ToolName != editToolName {
		return types.Allow(g.Name()), nil
	}

	oldText := event.ToolInput.OldString
	newText := event.ToolInput.NewString
	if !textmatch.ContainsAny(oldText, snippetOpenMarker, snippetCloseMarker) {
		return types.Allow(g.Name()), nil
	}

	oldOpen := strings.Contains(oldText, snippetOpenMarker)
	oldClose := strings.Contains(oldText, snippetCloseMarker)
	newOpen := strings.Contains(newText, snippetOpenMarker)
	newClose := strings.Contains(newText, snippetCloseMarker)

	switch {
	case oldOpen && oldClose && !newOpen && !newClose:
		return types.Allow(g.Name()), nil

	case oldOpen && !newOpen:
		id, ok := textmatch.Capture(snippetIDPattern, oldText, 1)
		if !ok {
			id = "unknown"
		}
		return g.openingRemoved(id), nil

	case oldClose && !newClose && !oldOpen:
		return g.closingRemoved(), nil

	case oldOpen && newOpen && oldClose && newClose:
		oldBody, oldOK := textmatch.Capture(snippetBodyPattern, oldText, 1)
		newBody, newOK := textmatch.Capture(snippetBodyPattern, newText, 1)
		if oldOK && newOK && oldBody != newBody {
			return g.contentModified(), nil
		}
	}

	return types.Allow(g.Name()), nil
}

func (g *SnippetGuard) openingRemoved(id string) types.Decision {
	return types.Decision{
		Verdict: types.VerdictBlock,
		Guard:   g.Name(),
		Title:   "BLOCKED: Snippet marker removal detected",
		Reason: "You are removing the snippet marker for '" + id + "' without removing\n" +
			"the entire snippet block.",
		Details: []string{
			"Snippet markers sync code from docs/samples/ projects. To modify snippet content:",
			"",
			"1. Update the corresponding code in docs/samples/ project",
			"   - Find the #region " + id + " marker",
			"   - Modify the code there (it must compile and have tests)",
			"",
			"2. Run the sync script:",
			`   .\scripts\extract-snippets.ps1 -Update`,
			"",
			"3. The documentation will be updated automatically",
			"",
			"If you need to REMOVE a snippet entirely:",
			"- Remove from opening marker through closing marker (" + snippetCloseMarker + ")",
			"- Also remove the corresponding #region from docs/samples/",
			"",
			"Never modify snippet content directly in documentation files.",
		},
		Channel: types.ChannelStructured,
	}
}

func (g *SnippetGuard) closingRemoved() types.Decision {
	return types.Decision{
		Verdict: types.VerdictBlock,
		Guard:   g.Name(),
		Title:   "BLOCKED: Snippet closing marker removal detected",
		Reason: "You are removing a snippet closing marker (" + snippetCloseMarker + ") which will\n" +
			"break the snippet sync system.",
		Details: []string{
			"To modify snippet content:",
			"1. Update code in docs/samples/ project",
			`2. Run: .\scripts\extract-snippets.ps1 -Update`,
			"",
			"To remove a snippet entirely:",
			"- Remove from opening marker through closing marker",
		},
		Channel: types.ChannelStructured,
	}
}

func (g *SnippetGuard) contentModified() types.Decision {
	return types.Decision{
		Verdict: types.VerdictWarn,
		Guard:   g.Name(),
		Title:   "WARNING: Modifying snippet content directly",
		Reason: "You are modifying content inside a snippet block. This content is synced\n" +
			"from docs/samples/ and your changes may be overwritten.",
		Details: []string{
			"Recommended workflow:",
			"1. Update code in docs/samples/ project (so it compiles and has tests)",
			`2. Run: .\scripts\extract-snippets.ps1 -Update`,
			"",
			"Proceeding with direct edit...",
		},
		Channel: types.ChannelExitCode,
	}
}
