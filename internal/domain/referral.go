package domain

import "time"

// Referral is an append-only record linking a referrer to a referred user.
type Referral struct {
	ID             int64     `db:"id" json:"id"`
	ReferrerID     int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID     int64     `db:"referred_id" json:"referred_id"`
	CreditsAwarded int       `db:"credits_awarded" json:"credits_awarded"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
