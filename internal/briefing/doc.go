// Package briefing compiles the context document injected into each Claude
// Code task.
//
// A briefing gives a stateless task run the project's accumulated notes and,
// depending on the continuity mode, what happened earlier in the session.
//
// # Document Layout
//
// Sections are emitted in a fixed order and skipped when empty:
//
//	<!-- CLANCY CONTEXT — AUTO-GENERATED -->
//	<!-- Project: my-project | Task: 3 -->
//
//	## Session Context            (Summary mode)
//	## Full Conversation History  (Full mode)
//	## Inherited Context (from parent-project)
//	## Architectural Context
//	## Key Decisions
//	## Known Pitfalls
//	## Current Plan
//
//	---
//	When you complete work or encounter a problem, state it clearly for continuity.
//
// # Continuity Modes
//
//   - Fresh: no session history, notes only.
//   - Summary: one line per prior task, "n. prompt — summary".
//   - Full: each prior task's raw output is parsed again and rendered with
//     assistant text verbatim and tool calls collapsed to "[Used tool: X]".
//
// # Token Budget
//
// Size is estimated at four characters per token. A document over budget is
// cut at the budget and rewound to the last "## " heading before the cut so
// it never ends inside a section, then marked with
// "[Context truncated due to token limit]". If there is no heading before the
// cut the document is kept whole and unmarked.
//
// # Usage
//
//	c := &briefing.Compiler{
//	    ProjectName: "my-project",
//	    Store:       project.Notes(),
//	    MaxTokens:   12000,
//	    OutputPath:  launch.ContextPath(workDir),
//	}
//	doc, err := c.Compile(history, briefing.ModeSummary)
package briefing
