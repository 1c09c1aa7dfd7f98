package guard

import (
	"strings"
	"testing"

	"github.com/leefowlercu/agent-hook-guardrails/pkg/types"
)

func TestTestDoubleGuard_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		event      types.ToolEvent
		want       types.Verdict
		wantReason string
	}{
		{
			name:  "outside test area",
			event: writeEvent("/repo/src/OrderService.cs", "// copied from OrderService"),
			want:  types.VerdictAllow,
		},
		{
			name:  "empty content",
			event: writeEvent("/repo/Tests/OrderTests.cs", ""),
			want:  types.VerdictAllow,
		},
		{
			name:       "admission phrase",
			event:      writeEvent("/repo/Tests/OrderTests.cs", "// Copied From OrderService.Validate"),
			want:       types.VerdictBlock,
			wantReason: `pattern: 'copied\s+from'`,
		},
		{
			name:       "mirrors production phrase in edit",
			event:      editEvent("/repo/Unit/OrderTests.cs", "", "// this mirrors the production rules"),
			want:       types.VerdictBlock,
			wantReason: "mirrors",
		},
		{
			name: "test double with method body",
			event: writeEvent("/repo/Tests/OrderTests.cs",
				"private class OrderTestDouble\n{\n    public bool IsValid(int x) { return true; }\n}"),
			want:       types.VerdictBlock,
			wantReason: "TestDouble class with method implementations",
		},
		{
			name: "private class returning comparison",
			event: writeEvent("/repo/Tests/OrderTests.cs",
				"private class Checker\n{\n    bool Ok(int a, int b) { return a == b; }\n}"),
			want:       types.VerdictBlock,
			wantReason: "comparison logic",
		},
		{
			name: "trivial stub",
			event: writeEvent("/repo/Tests/ClockTests.cs",
				"private class FakeClock\n{\n    public DateTime Now => Fixed;\n}"),
			want: types.VerdictAllow,
		},
	}

	g := NewTestDoubleGuard()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evaluate(t, g, tt.event)
			if d.Verdict != tt.want {
				t.Fatalf("verdict = %v, want %v (reason %q)", d.Verdict, tt.want, d.Reason)
			}
			if !strings.Contains(d.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want it to contain %q", d.Reason, tt.wantReason)
			}
		})
	}
}
