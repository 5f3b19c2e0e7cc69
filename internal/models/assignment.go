package models

import "time"

// TaskAssignment joins a user to a task. The (task, user) pair is
// unique; the engine checks before insert, the store enforces it.
type TaskAssignment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	TaskID     int64     `json:"task_id"`
	AssignedAt time.Time `json:"assigned_at"`
}
