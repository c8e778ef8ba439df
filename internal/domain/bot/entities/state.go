package entities

import "time"

// State is a step of a multi-step admin flow
type State string

const (
	StateNone                      State = ""
	StateAwaitingChannelLink       State = "awaiting_channel_link"
	StateAwaitingBroadcastContent  State = "awaiting_broadcast_content"
	StateAwaitingAdminGrantID      State = "awaiting_admin_grant_id"
	StateAwaitingAdminRevokeTarget State = "awaiting_admin_revoke_target"
)

// Valid reports whether the state is one of the known values
func (s State) Valid() bool {
	switch s {
	case StateNone, StateAwaitingChannelLink, StateAwaitingBroadcastContent,
		StateAwaitingAdminGrantID, StateAwaitingAdminRevokeTarget:
		return true
	default:
		return false
	}
}

// Conversation is the per-user flow state with its context
type Conversation struct {
	State     State             `json:"state"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Active reports whether a flow is in progress
func (c Conversation) Active() bool {
	return c.State != StateNone
}
