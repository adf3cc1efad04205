package project

import (
	"time"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Metadata is stored in project.yaml.
type Metadata struct {
	Name     string     `yaml:"name" json:"name"`
	Created  time.Time  `yaml:"created" json:"created"`
	LastTask *time.Time `yaml:"last_task,omitempty" json:"last_task,omitempty"`
	Parent   string     `yaml:"parent,omitempty" json:"parent,omitempty"`
	Branch   string     `yaml:"branch,omitempty" json:"branch,omitempty"`
	Status   Status     `yaml:"status" json:"status"`
	Stats    Stats      `yaml:"stats" json:"stats"`
}

// Stats counts sessions and tasks over the project's lifetime.
type Stats struct {
	TotalSessions int `yaml:"total_sessions" json:"total_sessions"`
	TotalTasks    int `yaml:"total_tasks" json:"total_tasks"`
}

// NewMetadata returns metadata for a project created now.
func NewMetadata(name string, now time.Time) Metadata {
	return Metadata{
		Name:    name,
		Created: now.UTC(),
		Status:  StatusActive,
	}
}

// Archived reports whether the project has been archived.
func (m *Metadata) Archived() bool {
	return m.Status == StatusArchived
}
