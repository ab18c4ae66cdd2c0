package models

import "time"

// Participant is the membership of a user in a chat.
type Participant struct {
	ID         int        `db:"id" json:"id"`
	ChatID     int        `db:"chat_id" json:"chat_id"`
	UserID     int        `db:"user_id" json:"user_id"`
	JoinedAt   time.Time  `db:"joined_at" json:"joined_at"`
	LastReadAt *time.Time `db:"last_read_at" json:"last_read_at"`
}
