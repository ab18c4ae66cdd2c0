package models

import "time"

// MessageType tags the kind of content a message carries.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message represents a chat message. For image and file messages Content is an opaque reference.
type Message struct {
	ID          int         `db:"id" json:"id"`
	ChatID      int         `db:"chat_id" json:"chat_id"`
	SenderID    int         `db:"sender_id" json:"sender_id"`
	Content     string      `db:"content" json:"content"`
	MessageType MessageType `db:"message_type" json:"message_type"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// MessageWithSender joins a message with its author's profile.
type MessageWithSender struct {
	Message
	Sender User `json:"sender"`
}
