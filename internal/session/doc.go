// Package session drives an interactive clancy session for one project.
//
// A Session owns the in-memory task history and conversation mode. Each task
// compiles the context document, runs the assistant, records the outcome in
// the project and its task log, and then extracts note updates from the
// transcript. Extraction failures are reported but never fail the task.
package session
