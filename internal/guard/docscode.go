package guard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/leefowlercu/agent-hook-guardrails/internal/scope"
	"github.com/leefowlercu/agent-hook-guardrails/internal/textmatch"
	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

const (
	docsCodeGuardName = "docs-code"

	// minSubstantialLines is the number of non-blank, non-comment lines that
	// makes a fenced block worth warning about
	minSubstantialLines = 3
)

var fencedCodeBlock = regexp.MustCompile(
	"(?is)`{3}(?:csharp|cs|python|py|typescript|ts|javascript|js|java|go|rust)\\n(.*?)`{3}",
)

var docsCodeWarnDetails = []string{
	"REMINDER: Documentation Code Examples workflow:",
	"",
	"1. Add code to docs/samples/ projects first (so it compiles)",
	"2. Mark with #region docs:{target}:{id}",
	"3. Run extract-snippets script to sync to docs",
	"",
	"Never write code directly in documentation - always source",
	"from compiled samples to ensure examples actually work.",
	"",
	"If this is pseudocode/illustration, proceed.",
}

// DocsCodeGuard warns when a documentation file gains substantial inline code
// blocks that are not sourced from sample projects. It never blocks.
type DocsCodeGuard struct {
	scope scope.Scope
}

// Force compile-time check for interface implementation
var _ Guard = (*DocsCodeGuard)(nil)

// NewDocsCodeGuard creates a new documentation code-block guard
func NewDocsCodeGuard() *DocsCodeGuard {
	return &DocsCodeGuard{scope: scope.DocsMarkdown}
}

// Name returns the guard name
func (g *DocsCodeGuard) Name() string {
	return docsCodeGuardName
}

// Description returns the guard summary
func (g *DocsCodeGuard) Description() string {
	return "Warn about substantial inline code blocks in documentation"
}

// Evaluate counts substantial fenced code blocks in the new content
func (g *DocsCodeGuard) Evaluate(ctx context.Context, event types.ToolEvent) (types.Decision, error) {
	if !g.scope.Contains(event.ToolInput.FilePath) {
		return types.Allow(g.Name()), nil
	}

	content := event.NewText()
	if content == "" {
		return types.Allow(g.Name()), nil
	}

	blocks := substantialBlocks(content)
	if blocks == 0 {
		return types.Allow(g.Name()), nil
	}

	return types.Decision{
		Verdict: types.VerdictWarn,
		Guard:   g.Name(),
		Title:   "WARNING: Code blocks in documentation file",
		Reason:  fmt.Sprintf("Found %d code block(s) with %d+ lines", blocks, minSubstantialLines),
		Details: docsCodeWarnDetails,
		Channel: types.ChannelExitCode,
	}, nil
}

func substantialBlocks(content string) int {
	count := 0
	for _, body := range textmatch.CaptureAll(fencedCodeBlock, content, 1) {
		if codeLines(body) >= minSubstantialLines {
			count++
		}
	}
	return count
}

// codeLines counts lines that are neither blank nor "//" comments
func codeLines(body string) int {
	n := 0
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		n++
	}
	return n
}
