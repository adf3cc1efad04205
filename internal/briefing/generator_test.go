package briefing

import (
	"strings"
	"testing"

	"github.com/andrewimm/clancy/internal/notes"
	"github.com/andrewimm/clancy/internal/testutil"
	"github.com/spf13/afero"
)

func newCompiler(t *testing.T) (*Compiler, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	store := notes.NewStore(fs, "/projects/demo/notes")
	return &Compiler{
		ProjectName: "demo",
		Store:       store,
		MaxTokens:   12000,
		OutputPath:  "/work/.claude/context.md",
		Fs:          fs,
	}, fs
}

func sampleHistory() []TaskRecord {
	return []TaskRecord{
		{Number: 1, Prompt: "add login", Summary: "Added the login handler", RawOutput: testutil.SampleStream()},
		{Number: 2, Prompt: "fix tests", Summary: "(failed) fix tests", RawOutput: testutil.Stream(testutil.TextEvent("Tests still fail."))},
	}
}

func TestCompileEmptyProject(t *testing.T) {
	t.Parallel()

	c, fs := newCompiler(t)
	doc, err := c.Compile(nil, ModeSummary)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := "<!-- CLANCY CONTEXT — AUTO-GENERATED -->\n" +
		"<!-- Project: demo | Task: 1 -->\n\n" +
		"---\n" +
		"When you complete work or encounter a problem, state it clearly for continuity.\n"
	if doc.Content != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, doc.Content)
	}
	if doc.Tokens != len(want)/4 {
		t.Errorf("Expected %d tokens, got %d", len(want)/4, doc.Tokens)
	}

	written, err := afero.ReadFile(fs, "/work/.claude/context.md")
	if err != nil {
		t.Fatalf("Expected context file: %v", err)
	}
	if string(written) != want {
		t.Error("Expected written file to match the document")
	}
}

func TestCompileSectionsInOrder(t *testing.T) {
	t.Parallel()

	c, _ := newCompiler(t)
	c.Store.Write(notes.Plan, "- ship it")
	c.Store.Write(notes.Failures, "- don't edit generated code")
	c.Store.Write(notes.Decisions, "   \n")
	c.Store.Write(notes.Architecture, "- handlers in internal/api")

	doc, err := c.Compile(nil, ModeSummary)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if strings.Contains(doc.Content, "## Key Decisions") {
		t.Error("Expected blank decisions to be skipped")
	}

	order := []string{"## Architectural Context\n\n- handlers in internal/api\n\n", "## Known Pitfalls", "## Current Plan\n\n- ship it\n\n---\n"}
	last := -1
	for _, s := range order {
		idx := strings.Index(doc.Content, s)
		if idx < 0 {
			t.Fatalf("Expected %q in document", s)
		}
		if idx < last {
			t.Errorf("Expected %q after previous section", s)
		}
		last = idx
	}
}

func TestCompileModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    Mode
		want    []string
		notWant []string
	}{
		{
			name:    "fresh",
			mode:    ModeFresh,
			notWant: []string{"## Session Context", "## Full Conversation History"},
		},
		{
			name: "summary",
			mode: ModeSummary,
			want: []string{
				"## Session Context\n\nThis is task 3 of an ongoing session. Prior tasks:\n" +
					"1. add login — Added the login handler\n" +
					"2. fix tests — (failed) fix tests\n\n",
			},
			notWant: []string{"## Full Conversation History", "[Used tool:"},
		},
		{
			name: "full",
			mode: ModeFull,
			want: []string{
				"## Full Conversation History\n\nThis is task 3 of an ongoing session. Full prior conversation:\n\n",
				"### Task 1: add login\n\nI'll look at the handler first.\n\n[Used tool: Read]\n\n[Used tool: Edit]\n\nFixed the nil check in the handler.\n\n",
				"### Task 2: fix tests\n\nTests still fail.\n\n",
			},
			notWant: []string{"## Session Context", "permission denied", "package api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCompiler(t)
			doc, err := c.Compile(sampleHistory(), tt.mode)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if !strings.Contains(doc.Content, "<!-- Project: demo | Task: 3 -->") {
				t.Error("Expected header to name the upcoming task")
			}
			for _, s := range tt.want {
				if !strings.Contains(doc.Content, s) {
					t.Errorf("Expected document to contain %q\ngot:\n%s", s, doc.Content)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(doc.Content, s) {
					t.Errorf("Expected document not to contain %q", s)
				}
			}
		})
	}
}

func TestCompileFullModeCompactedRecord(t *testing.T) {
	t.Parallel()

	c, _ := newCompiler(t)
	history := []TaskRecord{{Number: 0, Prompt: "(compacted 2 tasks)", Summary: "- Task 1: a → b"}}

	doc, err := c.Compile(history, ModeFull)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(doc.Content, "### Task 0: (compacted 2 tasks)\n\n- Task 1: a → b\n\n") {
		t.Errorf("Expected compacted summary, got:\n%s", doc.Content)
	}
}

func TestCompileInheritedContext(t *testing.T) {
	t.Parallel()

	c, fs := newCompiler(t)
	parent := notes.NewStore(fs, "/projects/platform/notes")
	c.Parent = &Parent{Name: "platform", Store: parent}

	doc, _ := c.Compile(nil, ModeSummary)
	if strings.Contains(doc.Content, "Inherited Context") {
		t.Error("Expected blank parent architecture to be skipped")
	}

	parent.Write(notes.Architecture, "- shared auth middleware")
	parent.Write(notes.Plan, "- parent plan stays private")
	c.Store.Write(notes.Architecture, "- child arch")

	doc, err := c.Compile(nil, ModeSummary)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	inherited := strings.Index(doc.Content, "## Inherited Context (from platform)\n\n- shared auth middleware\n\n")
	own := strings.Index(doc.Content, "## Architectural Context")
	if inherited < 0 || own < 0 || inherited > own {
		t.Errorf("Expected inherited context before own architecture, got:\n%s", doc.Content)
	}
	if strings.Contains(doc.Content, "parent plan stays private") {
		t.Error("Expected only parent architecture to be inherited")
	}
}

func TestCompileTruncates(t *testing.T) {
	t.Parallel()

	c, _ := newCompiler(t)
	c.MaxTokens = 100
	c.Store.Write(notes.Architecture, "- short arch")
	c.Store.Write(notes.Decisions, strings.Repeat("- a long decision line\n", 40))

	doc, err := c.Compile(nil, ModeSummary)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if !doc.Truncated {
		t.Fatal("Expected document to be truncated")
	}
	if !strings.HasSuffix(doc.Content, "- short arch\n"+TruncationMarker) {
		t.Errorf("Expected cut after the architecture section, got:\n%s", doc.Content)
	}
	if strings.Contains(doc.Content, "## Key Decisions") {
		t.Error("Expected the oversized section to be dropped whole")
	}
}
