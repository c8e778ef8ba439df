// Package dto contains data transfer objects for the bot domain
package dto

import "time"

// Audit event types published to Kafka
const (
	EventUserRegistered     = "user.registered"
	EventChannelAdded       = "channel.added"
	EventChannelRemoved     = "channel.removed"
	EventAdminGranted       = "admin.granted"
	EventAdminRevoked       = "admin.revoked"
	EventBroadcastCompleted = "broadcast.completed"
)

// AuditEvent represents a Kafka event describing a state change made through the bot
type AuditEvent struct {
	Type       string    `json:"type"`
	ActorID    int64     `json:"actor_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	ChannelID  string    `json:"channel_id,omitempty"`
	ChannelURL string    `json:"channel_url,omitempty"`
	Total      int       `json:"total,omitempty"`
	Delivered  int       `json:"delivered,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuditEvent creates an event of the given type stamped with the current time
func NewAuditEvent(eventType string) *AuditEvent {
	return &AuditEvent{Type: eventType, OccurredAt: time.Now().UTC()}
}

// BroadcastRequestEvent represents a Kafka request to broadcast a text message to all users
type BroadcastRequestEvent struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	RequestedBy int64  `json:"requested_by"`
	CreatedAt   string `json:"created_at"`
}

// BroadcastReport is the outcome of a broadcast run
type BroadcastReport struct {
	Total     int `json:"total"`
	Delivered int `json:"delivered"`
}

// Failed returns the number of recipients that did not get the message
func (r BroadcastReport) Failed() int {
	return r.Total - r.Delivered
}

// StartCommandRequest represents a request to handle /start command
type StartCommandRequest struct {
	UserID   int64  `json:"userId"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// CommandResponse represents a response for bot commands
type CommandResponse struct {
	Message string `json:"message"`
}
