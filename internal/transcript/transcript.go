package transcript

import (
	"encoding/json"
	"unicode/utf8"
)

// NoSummary is returned by GenerateSummary when the transcript has no usable text.
const NoSummary = "(no summary available)"

const summaryLimit = 200

// Transcript is the normalized record of one task execution.
type Transcript struct {
	Init     *SystemInit `json:"init"`
	Messages []Message   `json:"messages"`
	Result   *TaskResult `json:"result"`
}

// SystemInit holds the session metadata from the init event.
type SystemInit struct {
	Model             *string `json:"model"`
	SessionID         *string `json:"session_id"`
	ClaudeCodeVersion *string `json:"claude_code_version"`
	Cwd               *string `json:"cwd"`
}

// TaskResult is the terminal outcome of a task. Nil pointers mean the value
// was not reported, which is different from zero.
type TaskResult struct {
	Success      bool     `json:"success"`
	ResultText   *string  `json:"result_text"`
	DurationMs   *uint64  `json:"duration_ms"`
	TotalCostUSD *float64 `json:"total_cost_usd"`
	Usage        *Usage   `json:"usage"`
}

// Usage holds token counts reported with the result.
type Usage struct {
	InputTokens         *uint64 `json:"input_tokens"`
	OutputTokens        *uint64 `json:"output_tokens"`
	CacheReadTokens     *uint64 `json:"cache_read_tokens"`
	CacheCreationTokens *uint64 `json:"cache_creation_tokens"`
}

// Message is one entry in the conversation: Text, ToolUse or ToolResult.
type Message interface {
	isMessage()
}

// Text is assistant prose.
type Text struct {
	Text string
}

// ToolUse is a tool invocation by the assistant.
type ToolUse struct {
	ToolName string
	ToolID   string
	Input    json.RawMessage
}

// ToolResult is the output of a tool invocation. ToolID refers to a prior
// ToolUse but is not checked.
type ToolResult struct {
	ToolID  string
	Output  string
	IsError bool
}

func (Text) isMessage()       {}
func (ToolUse) isMessage()    {}
func (ToolResult) isMessage() {}

func (m Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{"text", m.Text})
}

func (m ToolUse) MarshalJSON() ([]byte, error) {
	input := m.Input
	if len(input) == 0 {
		input = json.RawMessage("null")
	}
	return json.Marshal(struct {
		Type     string          `json:"type"`
		ToolName string          `json:"tool_name"`
		ToolID   string          `json:"tool_id"`
		Input    json.RawMessage `json:"input"`
	}{"tool_use", m.ToolName, m.ToolID, input})
}

func (m ToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		ToolID  string `json:"tool_id"`
		Output  string `json:"output"`
		IsError bool   `json:"is_error"`
	}{"tool_result", m.ToolID, m.Output, m.IsError})
}

// Succeeded reports whether a result is present and marked successful.
func (t *Transcript) Succeeded() bool {
	return t.Result != nil && t.Result.Success
}

// GenerateSummary returns the result text, or the first assistant text when
// there is none, cut to 200 bytes with a trailing "...".
func (t *Transcript) GenerateSummary() string {
	var summary string
	if t.Result != nil && t.Result.ResultText != nil {
		summary = *t.Result.ResultText
	}

	if summary == "" {
		for _, msg := range t.Messages {
			if text, ok := msg.(Text); ok {
				summary = text.Text
				break
			}
		}
	}

	if summary == "" {
		return NoSummary
	}
	return cut(summary, summaryLimit)
}

// ToolsUsed returns tool names in invocation order, duplicates included.
func (t *Transcript) ToolsUsed() []string {
	tools := []string{}
	for _, msg := range t.Messages {
		if use, ok := msg.(ToolUse); ok {
			tools = append(tools, use.ToolName)
		}
	}
	return tools
}

// TotalCost returns the reported cost in USD.
func (t *Transcript) TotalCost() (float64, bool) {
	if t.Result == nil || t.Result.TotalCostUSD == nil {
		return 0, false
	}
	return *t.Result.TotalCostUSD, true
}

// DurationMs returns the reported wall time in milliseconds.
func (t *Transcript) DurationMs() (uint64, bool) {
	if t.Result == nil || t.Result.DurationMs == nil {
		return 0, false
	}
	return *t.Result.DurationMs, true
}

// ModelName returns the model id from the init event, or "".
func (t *Transcript) ModelName() string {
	if t.Init == nil || t.Init.Model == nil {
		return ""
	}
	return *t.Init.Model
}

// cut keeps the first n bytes of s and appends "...". The cut backs off to a
// rune boundary so the result stays valid UTF-8.
func cut(s string, n int) string {
	if len(s) <= n {
		return s
	}
	end := n
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	return s[:end] + "..."
}
