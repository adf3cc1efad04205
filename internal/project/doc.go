// Package project manages clancy projects on disk.
//
// Each project lives in its own directory under the projects root:
//
//	projects/<name>/
//	  project.yaml        metadata (created, last task, parent, status, stats)
//	  notes/<category>.md knowledge notes, see package notes
//	  tasks/NNN-slug.json one log per completed task, see package tasklog
//
// A project may link to a parent project; the child inherits the parent's
// architecture notes when its context is compiled. Links never form cycles.
package project
