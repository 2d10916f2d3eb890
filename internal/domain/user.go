package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	AuthUID      string    `db:"auth_uid" json:"auth_uid"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Email        string    `db:"email" json:"email,omitempty"`
	PhotoURL     string    `db:"photo_url" json:"photo_url,omitempty"`
	Credits      int       `db:"credits" json:"credits"`
	Premium      bool      `db:"premium" json:"premium"`
	TotalLikes   int64     `db:"total_likes" json:"total_likes"`
	TotalShares  int64     `db:"total_shares" json:"total_shares"`
	TotalAvatars int64     `db:"total_avatars" json:"total_avatars"`
	ReferralCode string    `db:"referral_code" json:"referral_code,omitempty"`
	ReferredBy   *int64    `db:"referred_by" json:"referred_by,omitempty"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
