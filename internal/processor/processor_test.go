package processor

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leefowlercu/agent-hook-guardrails/internal/config"
)

type outcome struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, cfg *config.Config, guardName, input string) outcome {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code, err := Process(strings.NewReader(input), &stdout, &stderr, cfg, guardName)
	if err != nil {
		t.Fatalf("Process(%s) error = %v", guardName, err)
	}
	return outcome{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return string(data)
}

func TestProcess_MalformedInputAllows(t *testing.T) {
	guards := []string{"commit-guard", "test-double", "snippet-markers", "assertions", "commented-code", "docs-code"}
	inputs := []string{"", "not json", "[1, 2]", `"string"`, "null", `{"tool_name":`,
		`{"tool_name":"Bash","tool_input":{"command":"git commit -m x"}} garbage`}

	for _, guardName := range guards {
		for _, input := range inputs {
			got := run(t, nil, guardName, input)
			if got != (outcome{}) {
				t.Errorf("%s with input %q = %+v, want exit 0 and no output", guardName, input, got)
			}
		}
	}
}

func TestProcess_WrongTypedFieldsUseDefaults(t *testing.T) {
	got := run(t, nil, "commit-guard", `{"tool_name":"Bash","tool_input":"git commit"}`)
	if got != (outcome{}) {
		t.Errorf("got %+v, want silent allow", got)
	}
}

func TestProcess_CommitGuard(t *testing.T) {
	transcript := filepath.Join(t.TempDir(), "transcript.jsonl")
	if err := os.WriteFile(transcript, []byte(`{"type":"user","message":{"content":"please commit this"}}`+"\n"), 0600); err != nil {
		t.Fatalf("failed to write transcript: %v", err)
	}

	command := map[string]any{"command": `git commit -m "x"`}

	t.Run("explicit request allows", func(t *testing.T) {
		got := run(t, nil, "commit-guard", mustJSON(t, map[string]any{
			"tool_name":       "Bash",
			"tool_input":      command,
			"transcript_path": transcript,
		}))
		if got != (outcome{}) {
			t.Errorf("got %+v, want silent allow", got)
		}
	})

	t.Run("no transcript blocks", func(t *testing.T) {
		got := run(t, nil, "commit-guard", mustJSON(t, map[string]any{
			"tool_name":  "Bash",
			"tool_input": command,
		}))
		if got.code != 2 {
			t.Errorf("exit code = %d, want 2", got.code)
		}
		if got.stdout != "" {
			t.Errorf("stdout = %q, want empty", got.stdout)
		}
		for _, want := range []string{"BLOCKED", `git commit -m "x"`} {
			if !strings.Contains(got.stderr, want) {
				t.Errorf("stderr missing %q:\n%s", want, got.stderr)
			}
		}
	})
}

func TestProcess_SnippetStructuredBlock(t *testing.T) {
	got := run(t, nil, "snippet-markers", mustJSON(t, map[string]any{
		"tool_name": "Edit",
		"tool_input": map[string]any{
			"file_path":  "/repo/docs/guide.md",
			"old_string": "<!-- snippet: foo -->\ncode\n<!-- /snippet -->",
			"new_string": "code\n<!-- /snippet -->",
		},
	}))

	if got.code != 0 {
		t.Errorf("exit code = %d, want 0", got.code)
	}
	if got.stderr != "" {
		t.Errorf("stderr = %q, want empty", got.stderr)
	}

	var output struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(got.stdout), &output); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, got.stdout)
	}
	if output.Decision != "block" {
		t.Errorf("decision = %q, want block", output.Decision)
	}
	if !strings.Contains(output.Reason, "'foo'") {
		t.Errorf("reason missing snippet id:\n%s", output.Reason)
	}
}

func TestProcess_WarningsExitZero(t *testing.T) {
	tests := []struct {
		name      string
		guardName string
		input     map[string]any
	}{
		{
			name:      "commented code",
			guardName: "commented-code",
			input: map[string]any{
				"tool_name":  "Write",
				"tool_input": map[string]any{"file_path": "/repo/src/app.ts", "content": "// var x = 1\n// return x\n// if (x)"},
			},
		},
		{
			name:      "snippet content edit",
			guardName: "snippet-markers",
			input: map[string]any{
				"tool_name": "Edit",
				"tool_input": map[string]any{
					"file_path":  "/repo/docs/guide.md",
					"old_string": "<!-- snippet: foo -->\na\n<!-- /snippet -->",
					"new_string": "<!-- snippet: foo -->\nb\n<!-- /snippet -->",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, nil, tt.guardName, mustJSON(t, tt.input))
			if got.code != 0 {
				t.Errorf("exit code = %d, want 0", got.code)
			}
			if got.stdout != "" {
				t.Errorf("stdout = %q, want empty", got.stdout)
			}
			if !strings.Contains(got.stderr, "WARNING") {
				t.Errorf("stderr missing warning:\n%s", got.stderr)
			}
		})
	}
}

func TestProcess_DisabledGuardAllows(t *testing.T) {
	cfg := config.Defaults()
	cfg.Guards.Disabled = []string{"commit-guard"}

	got := run(t, cfg, "commit-guard", `{"tool_name":"Bash","tool_input":{"command":"git push"}}`)
	if got != (outcome{}) {
		t.Errorf("got %+v, want silent allow", got)
	}
}

func TestProcess_UnknownFrameworkFallsBack(t *testing.T) {
	cfg := config.Defaults()
	cfg.Framework = "no-such-framework"

	got := run(t, cfg, "commit-guard", `{"tool_name":"Bash","tool_input":{"command":"git push"}}`)
	if got.code != 2 {
		t.Errorf("exit code = %d, want 2", got.code)
	}
	if !strings.Contains(got.stderr, `unknown framework "no-such-framework"; using claude`) {
		t.Errorf("stderr missing fallback note: %q", got.stderr)
	}
	if !strings.Contains(got.stderr, "BLOCKED") {
		t.Errorf("stderr missing block message: %q", got.stderr)
	}

	got = run(t, cfg, "commit-guard", "not json")
	if got.code != 0 || got.stdout != "" {
		t.Errorf("malformed input with unknown framework = %+v, want exit 0", got)
	}
}

func TestProcess_UnknownGuard(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if _, err := Process(strings.NewReader("{}"), &stdout, &stderr, nil, "no-such-guard"); err == nil {
		t.Error("Process(no-such-guard) succeeded, want error")
	}
}

func TestProcess_AuditDoesNotChangeOutput(t *testing.T) {
	input := `{"tool_name":"Edit","session_id":"s-1","tool_input":{"file_path":"/repo/Tests/CalcTests.cs","old_string":"Assert.Equal(1, a);\nAssert.Equal(2, b);","new_string":"Assert.Equal(1, a);"}}`

	plain := run(t, nil, "assertions", input)

	auditLog := filepath.Join(t.TempDir(), "audit", "decisions.log")
	cfg := config.Defaults()
	cfg.Audit = config.AuditConfig{
		Enabled: true,
		Protocols: []config.ProtocolConfig{
			{
				Name:     "blocks",
				Triggers: config.TriggerConfig{OnBlock: true},
				Strategies: []config.StrategyConfig{
					{Type: "log", Config: map[string]any{"log_file": auditLog, "format": "json"}},
				},
			},
		},
	}

	audited := run(t, cfg, "assertions", input)
	if audited != plain {
		t.Errorf("audited run = %+v, want %+v", audited, plain)
	}
	if plain.code != 2 || !strings.Contains(plain.stderr, "Removing Assert.* calls (2 → 1)") {
		t.Errorf("unexpected assertion outcome: %+v", plain)
	}

	data, err := os.ReadFile(auditLog)
	if err != nil {
		t.Fatalf("audit log not written: %v", err)
	}
	if !strings.Contains(string(data), `"guard":"assertions"`) {
		t.Errorf("audit log = %s", data)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	input := `{"tool_name":"Bash","tool_input":{"command":"git push --force"}}`

	first := run(t, nil, "commit-guard", input)
	second := run(t, nil, "commit-guard", input)
	if first != second {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
	if first.code != 2 {
		t.Errorf("exit code = %d, want 2", first.code)
	}
}
