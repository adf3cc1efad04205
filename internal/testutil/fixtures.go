package testutil

import (
	"encoding/json"
	"strings"
)

// InitEvent returns a system init line.
func InitEvent(model, sessionID string) string {
	return mustLine(map[string]any{
		"type":                "system",
		"subtype":             "init",
		"model":               model,
		"session_id":          sessionID,
		"claude_code_version": "2.1.12",
		"cwd":                 "/work",
	})
}

// TextEvent returns an assistant line carrying one text item.
func TextEvent(text string) string {
	return mustLine(map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{map[string]any{"type": "text", "text": text}},
		},
	})
}

// ToolUseEvent returns an assistant line carrying one tool invocation.
func ToolUseEvent(name, id string, input map[string]any) string {
	return mustLine(map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{map[string]any{"type": "tool_use", "name": name, "id": id, "input": input}},
		},
	})
}

// ToolResultEvent returns a user line carrying one tool result.
func ToolResultEvent(id, content string, isError bool) string {
	return mustLine(map[string]any{
		"type": "user",
		"message": map[string]any{
			"content": []any{map[string]any{
				"type":        "tool_result",
				"tool_use_id": id,
				"content":     content,
				"is_error":    isError,
			}},
		},
	})
}

// ResultEvent returns a terminal result line.
func ResultEvent(subtype, result string, durationMs int, costUSD float64) string {
	return mustLine(map[string]any{
		"type":           "result",
		"subtype":        subtype,
		"result":         result,
		"duration_ms":    durationMs,
		"total_cost_usd": costUSD,
		"usage":          map[string]any{"input_tokens": 100, "output_tokens": 50},
	})
}

// Stream joins event lines into newline-delimited output.
func Stream(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// SampleStream returns a complete successful task run.
func SampleStream() string {
	return Stream(
		InitEvent("claude-opus-4-5-20251101", "abc123"),
		TextEvent("I'll look at the handler first."),
		ToolUseEvent("Read", "tool_1", map[string]any{"file_path": "internal/api/handler.go"}),
		ToolResultEvent("tool_1", "package api", false),
		ToolUseEvent("Edit", "tool_2", map[string]any{"file_path": "internal/api/handler.go"}),
		ToolResultEvent("tool_2", "permission denied", true),
		TextEvent("Fixed the nil check in the handler."),
		ResultEvent("success", "Fixed the authentication bug", 1500, 0.0123),
	)
}

// SampleExtractionResponse returns an analysis reply with updates for every
// category except decisions.
func SampleExtractionResponse() string {
	return `### ARCHITECTURE
- Handlers live in internal/api and share a validate helper

### DECISIONS
NO_UPDATES

### FAILURES
- Don't edit generated files, the build regenerates them

### PLAN
Auth fix landed.
- Add a regression test for expired tokens
`
}

// SamplePlan returns a plan document with three phases and a Notes section.
func SamplePlan() string {
	return `# Migration Plan

Intro text that belongs to no phase.

## Phase 1: Schema

Add the new columns.

Backfill in batches.

## Notes

Keep the old table until phase 3.

## Phase 2: Readers

Switch readers to the new columns.

## Phase 3: Cleanup

Drop the old table.
`
}

func mustLine(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
