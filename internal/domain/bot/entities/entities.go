// Package entities contains domain entities
package entities

import "time"

// User represents a Telegram user who has interacted with the bot
type User struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"column:telegram_id;uniqueIndex;not null"`
	FullName   string    `gorm:"column:full_name"`
	Username   string    `gorm:"column:username"`
	IsAdmin    bool      `gorm:"column:is_admin;not null;default:false"`
	JoinedAt   time.Time `gorm:"column:joined_date;autoCreateTime"`
}

// TableName overrides the table name used by gorm
func (User) TableName() string {
	return "users"
}

// DisplayName returns "Full Name (@handle)" or just the name when the handle is empty
func (u User) DisplayName() string {
	if u.Username == "" {
		return u.FullName
	}
	return u.FullName + " (@" + u.Username + ")"
}

// RequiredChannel is a channel every user must be subscribed to
type RequiredChannel struct {
	ID        uint   `gorm:"primaryKey"`
	ChannelID string `gorm:"column:channel_id;uniqueIndex;not null"`
	URL       string `gorm:"column:channel_url"`
}

// TableName overrides the table name used by gorm
func (RequiredChannel) TableName() string {
	return "channels"
}

// MemberStatus is a user's status in a chat as reported by Telegram
type MemberStatus string

const (
	MemberStatusOwner         MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusBanned        MemberStatus = "kicked"
)

// IsSubscribed reports whether the status counts as a subscription
func (s MemberStatus) IsSubscribed() bool {
	switch s {
	case MemberStatusOwner, MemberStatusAdministrator, MemberStatusMember:
		return true
	default:
		return false
	}
}

// IsPrivileged reports whether the status grants admin rights in the chat
func (s MemberStatus) IsPrivileged() bool {
	return s == MemberStatusOwner || s == MemberStatusAdministrator
}

// ChatInfo is a resolved chat
type ChatInfo struct {
	ID         int64
	Title      string
	Username   string
	InviteLink string
}

// CanonicalURL returns the link users should follow to join the chat
func (c ChatInfo) CanonicalURL(fallback string) string {
	switch {
	case c.InviteLink != "":
		return c.InviteLink
	case c.Username != "":
		return "https://t.me/" + c.Username
	default:
		return fallback
	}
}
