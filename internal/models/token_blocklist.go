package models

import "time"

// TokenBlocklist records a revoked session token id (jti).
// Append-only; rows are never deleted.
type TokenBlocklist struct {
	ID        int64     `json:"id"`
	JTI       string    `json:"jti"`
	CreatedAt time.Time `json:"created_at"`
}
