package domain

import (
	"regexp"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "in progress"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// FilterAll is the sentinel list filter matching every status.
const FilterAll = "all"

// TaskStatuses enumerates every valid status, in display order.
var TaskStatuses = []TaskStatus{StatusInProgress, StatusCompleted, StatusFailed}

// IsValid reports whether s is one of the fixed status enumeration.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Deletable reports whether a task in this status may be removed.
// Deletion is the only guarded transition: it requires a completed task.
func (s TaskStatus) Deletable() bool {
	return s == StatusCompleted
}

const maxTaskNameLen = 120

var taskNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)

// ValidateTaskName checks the task-name constraints: non-empty, at most 120
// characters, letters and whitespace only. Returns a ValidationError listing
// every violated rule.
func ValidateTaskName(name string) error {
	var ve ValidationError
	if name == "" {
		ve.Add("name", "task name is required")
		return ve
	}
	if len(name) > maxTaskNameLen {
		ve.Add("name", "task name must be at most 120 characters")
	}
	if !taskNamePattern.MatchString(name) {
		ve.Add("name", "task name can only contain alphabets and spaces")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// Task is the single business entity tracked by the task application.
// Exactly one owner, fixed at creation; only the owner may mutate it.
type Task struct {
	ID        string     `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Status    TaskStatus `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	OwnerID   string     `json:"owner_id" bson:"owner_id"`
}
