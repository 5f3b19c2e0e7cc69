package models

import "time"

// Role is the canonical role field on a user. Authorization decisions
// key off this value only; there are no email allow-lists.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never serialized
	Role         Role   `json:"role"`

	// WorkspaceID is a weak membership reference: nil means the user
	// currently belongs to no workspace.
	WorkspaceID *string `json:"workspace_id,omitempty"`

	NotificationsEnabled bool `json:"notifications_enabled"`

	// refresh-token storage on the user row (opaque, rotated)
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`
}

type LoginRequest struct {
	// Identifier accepts either a username or an email.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
