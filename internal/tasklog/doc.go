// Package tasklog persists a record of every task clancy runs.
//
// Each task is written once as a pretty-printed JSON document in the
// project's tasks directory, named NNN-slug.json. Logs are also indexed in a
// SQLite database shared by all projects so history can be listed and
// searched without reading every document.
package tasklog
