package decision

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

// BoxWidth is the inner width of rendered message boxes, padding included
const BoxWidth = 70

var (
	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(0, 1).
			Width(BoxWidth)

	warnStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			Width(BoxWidth)
)

// Render formats a decision as boxed, human-readable text for the error
// stream. Blocks use a double-line border, warnings a single-line border.
// Silent decisions render as the empty string.
func Render(d types.Decision) string {
	if d.IsSilent() {
		return ""
	}

	style := warnStyle
	if d.Verdict == types.VerdictBlock {
		style = blockStyle
	}

	return "\n" + style.Render(buildBody(d)) + "\n"
}

// Reason formats a decision as plain text for structured output channels
func Reason(d types.Decision) string {
	return "\n" + buildBody(d) + "\n"
}

// buildBody lays out the title, a rule, the reason and the detail lines
func buildBody(d types.Decision) string {
	var sb strings.Builder

	sb.WriteString(d.Title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", BoxWidth-2))
	sb.WriteString("\n")

	if d.Reason != "" {
		sb.WriteString("\n")
		sb.WriteString(d.Reason)
		sb.WriteString("\n")
	}

	if len(d.Details) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(d.Details, "\n"))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
