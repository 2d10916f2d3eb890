package domain

import "time"

// Comment is append-only; never updated after creation.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	AvatarID  string    `db:"avatar_id" json:"avatar_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserPhoto string    `db:"user_photo" json:"user_photo,omitempty"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
