package models

import "time"

// Notification is delivered to exactly one user. TaskID is nullable
// in the model but the row cascades away with the task.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int64     `json:"user_id"`
	TaskID    *int64    `json:"task_id,omitempty"`
}
