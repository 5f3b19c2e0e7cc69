package models

type Comment struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	TaskID  int64  `json:"task_id"`
	UserID  int64  `json:"user_id"`
}
