package models

import "time"

// User is a registered identity. Username and email are unique.
type User struct {
	ID        int       `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser carries the fields required to register a user.
type NewUser struct {
	Username  string  `validate:"required,min=3,max=50"`
	Email     string  `validate:"required,email"`
	AvatarURL *string `validate:"omitempty,max=2048"`
}
