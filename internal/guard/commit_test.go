package guard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatalf("failed to write transcript: %v", err)
	}
	return path
}

func bashEvent(command, transcriptPath string) types.ToolEvent {
	return types.ToolEvent{
		ToolName:       "Bash",
		ToolInput:      types.ToolInput{Command: command},
		TranscriptPath: transcriptPath,
	}
}

func TestCommitGuard_Evaluate(t *testing.T) {
	requested := writeTranscript(t,
		`{"type":"assistant","message":{"content":"Done."}}`,
		`{"type":"user","message":{"content":"please commit this"}}`,
	)
	blockList := writeTranscript(t,
		`{"type":"human","message":{"content":[{"type":"text","text":"Please"},"ignored",{"text":"push it"}]}}`,
	)
	notRequested := writeTranscript(t,
		`not json at all`,
		`{"type":"assistant","message":{"content":"Shall I commit?"}}`,
		`{"type":"user","message":{"content":"fix the failing test"}}`,
		`{"type":"user","message":{"content":{"nested":"commit"}}}`,
	)
	missing := filepath.Join(t.TempDir(), "missing.jsonl")

	tests := []struct {
		name       string
		command    string
		transcript string
		want       types.Verdict
	}{
		{name: "non git command", command: "ls -la", want: types.VerdictAllow},
		{name: "git status without transcript", command: "git status", want: types.VerdictAllow},
		{name: "git diff with request-free transcript", command: "git diff HEAD", transcript: notRequested, want: types.VerdictAllow},
		{name: "commit prefix of longer word", command: "git commitment", want: types.VerdictAllow},
		{name: "commit with explicit request", command: `git commit -m "x"`, transcript: requested, want: types.VerdictAllow},
		{name: "push with request in block list", command: "git push origin main", transcript: blockList, want: types.VerdictAllow},
		{name: "commit without transcript", command: `git commit -m "x"`, want: types.VerdictBlock},
		{name: "commit with missing transcript", command: `git commit -m "x"`, transcript: missing, want: types.VerdictBlock},
		{name: "commit without request", command: `git commit -m "x"`, transcript: notRequested, want: types.VerdictBlock},
		{name: "push upper case", command: "GIT PUSH origin main", want: types.VerdictBlock},
		{name: "amend through other subcommand", command: "git -c user.name=x rebase --amend", want: types.VerdictBlock},
	}

	g := NewCommitGuard(discardLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evaluate(t, g, bashEvent(tt.command, tt.transcript))
			if d.Verdict != tt.want {
				t.Errorf("Evaluate(%q) verdict = %v, want %v", tt.command, d.Verdict, tt.want)
			}
		})
	}
}

func TestCommitGuard_BlockMessage(t *testing.T) {
	g := NewCommitGuard(discardLogger())

	d := evaluate(t, g, bashEvent(`git commit -m "x"`, ""))
	if d.Verdict != types.VerdictBlock {
		t.Fatalf("verdict = %v, want block", d.Verdict)
	}
	if d.Channel != types.ChannelExitCode {
		t.Errorf("channel = %v, want exit code", d.Channel)
	}
	if d.Reason != `Command: git commit -m "x"` {
		t.Errorf("reason = %q", d.Reason)
	}
	if !strings.Contains(d.Title, "explicit user request") {
		t.Errorf("title = %q", d.Title)
	}
}

func TestCommitGuard_TruncatesCommandEcho(t *testing.T) {
	g := NewCommitGuard(discardLogger())

	command := `git commit -m "` + strings.Repeat("a", 80) + `"`
	d := evaluate(t, g, bashEvent(command, ""))

	want := "Command: " + command[:commandEchoLength]
	if d.Reason != want {
		t.Errorf("reason = %q, want %q", d.Reason, want)
	}
}

func TestCommitGuard_BroadKeywordsCountAsRequests(t *testing.T) {
	transcript := writeTranscript(t,
		`{"type":"user","message":{"content":"don't push me to decide, just merge the ideas"}}`,
	)

	g := NewCommitGuard(discardLogger())
	d := evaluate(t, g, bashEvent("git push", transcript))
	if d.Verdict != types.VerdictAllow {
		t.Errorf("verdict = %v, want allow", d.Verdict)
	}
}
