package cli

import (
	"strings"
	"testing"

	"github.com/andrewimm/clancy/internal/testutil"
)

func TestDoctor(t *testing.T) {
	testutil.SetupTestEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cmd, buf := newTestCmd()
	if err := runDoctor(cmd, nil); err != nil {
		t.Fatalf("runDoctor failed: %v", err)
	}

	got := buf.String()
	for _, want := range []string{
		"config readable",
		"task index",
		"global config file (optional; run: clancy config init)",
		"$ANTHROPIC_API_KEY set (export ANTHROPIC_API_KEY)",
		"Results: ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected doctor output to contain %q, got:\n%s", want, got)
		}
	}
}
