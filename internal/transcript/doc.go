// Package transcript parses the stream-json output of a Claude Code task into
// a normalized Transcript.
//
// # Input
//
// The task runner invokes Claude Code with --output-format stream-json, which
// prints one JSON event per line:
//
//	{"type":"system","subtype":"init","model":"...","session_id":"...","cwd":"..."}
//	{"type":"assistant","message":{"content":[{"type":"text","text":"..."}]}}
//	{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Read","id":"t1","input":{}}]}}
//	{"type":"user","message":{"content":[{"type":"tool_result","tool_use_id":"t1","content":"..."}]}}
//	{"type":"result","subtype":"success","result":"...","duration_ms":1500,"total_cost_usd":0.01}
//
// # Tolerance
//
// Parse never fails. The producing process can die mid-stream, so each line
// is decoded on its own and anything that does not decode, or carries an
// unknown type, is skipped without affecting the lines around it. Missing
// fields are defaulted rather than rejected.
//
// # Messages
//
// Message is a closed sum type over Text, ToolUse and ToolResult. Consumers
// switch on the concrete type and ignore anything else.
package transcript
