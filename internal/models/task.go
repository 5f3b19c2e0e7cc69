package models

import "time"

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"

	// StatusPending is a deprecated synonym for todo, still accepted
	// on input and normalized before storage.
	StatusPending TaskStatus = "pending"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task belongs to exactly one task list. Assignments and comments are
// owned by the task and go away with it.
type Task struct {
	ID          int64        `json:"id"`
	TaskListID  int64        `json:"tasklist_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskPatch carries a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	DueDate     *string       `json:"due_date"` // YYYY-MM-DD, empty string clears
	Priority    *TaskPriority `json:"priority"`
	Status      *TaskStatus   `json:"status"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	TaskListID *int64
	Priority   *TaskPriority
	Status     *TaskStatus
	DueDate    *time.Time
}

// TaskStats is the dashboard summary over all tasks.
type TaskStats struct {
	Completed  int `json:"completed"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
}

// ValidStatus reports whether s is an accepted status value,
// including the legacy pending synonym.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusPending:
		return true
	}
	return false
}

// NormalizeStatus maps the legacy pending synonym onto todo.
func NormalizeStatus(s TaskStatus) TaskStatus {
	if s == StatusPending {
		return StatusTodo
	}
	return s
}

func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
