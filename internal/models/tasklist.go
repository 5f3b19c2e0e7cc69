package models

// TaskList owns its tasks; deleting the list deletes them. Template
// lists have no owner and exist only as cloning sources.
type TaskList struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	OwnerID    *int64 `json:"owner_id,omitempty"` // nil for templates
	IsTemplate bool   `json:"is_template"`
}
