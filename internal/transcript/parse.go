package transcript

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Parse converts newline-delimited stream-json into a Transcript. Lines that
// are not JSON objects with a known "type" are dropped.
func Parse(raw string) *Transcript {
	t := &Transcript{Messages: []Message{}}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var ev object
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}

		kind, ok := ev.str("type")
		if !ok {
			continue
		}

		switch kind {
		case "system":
			t.applyInit(ev)
		case "assistant":
			t.applyAssistant(ev)
		case "user":
			t.applyUser(ev)
		case "result":
			t.applyResult(ev)
		}
	}

	return t
}

func (t *Transcript) applyInit(ev object) {
	if t.Init != nil {
		return
	}
	if subtype, _ := ev.str("subtype"); subtype != "init" {
		return
	}
	t.Init = &SystemInit{
		Model:             ev.strPtr("model"),
		SessionID:         ev.strPtr("session_id"),
		ClaudeCodeVersion: ev.strPtr("claude_code_version"),
		Cwd:               ev.strPtr("cwd"),
	}
}

func (t *Transcript) applyAssistant(ev object) {
	for _, item := range contentItems(ev) {
		kind, _ := item.str("type")
		switch kind {
		case "text":
			if text, ok := item.str("text"); ok {
				t.Messages = append(t.Messages, Text{Text: text})
			}
		case "tool_use":
			name, ok := item.str("name")
			if !ok {
				name = "unknown"
			}
			id, _ := item.str("id")
			input, ok := item["input"]
			if !ok {
				input = json.RawMessage("null")
			}
			t.Messages = append(t.Messages, ToolUse{ToolName: name, ToolID: id, Input: input})
		}
	}
}

func (t *Transcript) applyUser(ev object) {
	for _, item := range contentItems(ev) {
		if kind, _ := item.str("type"); kind != "tool_result" {
			continue
		}
		id, _ := item.str("tool_use_id")
		output, _ := item.str("content")
		isError, _ := item.boolean("is_error")
		t.Messages = append(t.Messages, ToolResult{ToolID: id, Output: output, IsError: isError})
	}
}

func (t *Transcript) applyResult(ev object) {
	subtype, _ := ev.str("subtype")
	result := &TaskResult{
		Success:    subtype == "success",
		ResultText: ev.strPtr("result"),
	}
	if v, ok := ev.uint("duration_ms"); ok {
		result.DurationMs = &v
	}
	if v, ok := ev.float("total_cost_usd"); ok {
		result.TotalCostUSD = &v
	}
	if u, ok := ev.obj("usage"); ok {
		result.Usage = &Usage{
			InputTokens:         u.uintPtr("input_tokens"),
			OutputTokens:        u.uintPtr("output_tokens"),
			CacheReadTokens:     u.uintPtr("cache_read_input_tokens"),
			CacheCreationTokens: u.uintPtr("cache_creation_input_tokens"),
		}
	}
	t.Result = result
}

// contentItems returns the objects in ev.message.content, skipping entries
// that are not objects.
func contentItems(ev object) []object {
	msg, ok := ev.obj("message")
	if !ok {
		return nil
	}
	raw, ok := msg["content"]
	if !ok {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	items := make([]object, 0, len(entries))
	for _, entry := range entries {
		var item object
		if err := json.Unmarshal(entry, &item); err != nil || item == nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// object is a JSON object decoded lazily so that one field of the wrong type
// does not discard the rest of the event.
type object map[string]json.RawMessage

func (o object) field(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

func (o object) str(key string) (string, bool) {
	raw, ok := o.field(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (o object) strPtr(key string) *string {
	if s, ok := o.str(key); ok {
		return &s
	}
	return nil
}

func (o object) uint(key string) (uint64, bool) {
	raw, ok := o.field(key)
	if !ok {
		return 0, false
	}
	var v uint64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func (o object) uintPtr(key string) *uint64 {
	if v, ok := o.uint(key); ok {
		return &v
	}
	return nil
}

func (o object) float(key string) (float64, bool) {
	raw, ok := o.field(key)
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func (o object) boolean(key string) (bool, bool) {
	raw, ok := o.field(key)
	if !ok {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

func (o object) obj(key string) (object, bool) {
	raw, ok := o.field(key)
	if !ok {
		return nil, false
	}
	var v object
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}
