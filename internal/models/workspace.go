package models

import "time"

// Workspace is the tenant boundary. Its id is an opaque token, not a
// sequence value.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	// InviteActive marks a reusable join link: accepting it does not
	// consume the invite.
	InviteActive InviteStatus = "active"
)

type WorkspaceInvite struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	WorkspaceID string       `json:"workspace_id"`
	InviterID   int64        `json:"inviter_id"`
	Status      InviteStatus `json:"status"`
	Token       string       `json:"token"`
	CreatedAt   time.Time    `json:"created_at"`
}
