package models

import "time"

// Chat is a conversation container, one-on-one or group.
// UpdatedAt is the activity timestamp and only moves when a message is appended.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	Name      *string   `db:"name" json:"name"`
	IsGroup   bool      `db:"is_group" json:"is_group"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewChat describes a chat to be created together with its initial participants.
type NewChat struct {
	Name           *string `validate:"omitnil,min=1,max=100"`
	IsGroup        bool
	AvatarURL      *string
	ParticipantIDs []int `validate:"required,min=1,dive,gt=0"`
}

// MemberChat is a chat as seen by one of its participants.
type MemberChat struct {
	Chat
	LastReadAt *time.Time `db:"last_read_at" json:"last_read_at"`
}

// ChatActivity is a snapshot of a chat's latest message and a member's unread count.
type ChatActivity struct {
	LastMessage *Message
	UnreadCount int
}

// ChatSummary provides API-friendly view of a chat for a user.
type ChatSummary struct {
	Chat
	Participants []User   `json:"participants"`
	LastMessage  *Message `json:"last_message"`
	UnreadCount  int      `json:"unread_count"`
}

// ActivityAt is the ordering key of the chat list: latest message time, else creation time.
func (s ChatSummary) ActivityAt() time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.CreatedAt
}
