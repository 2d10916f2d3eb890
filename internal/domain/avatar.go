package domain

import (
	"errors"
	"strconv"
	"time"
)

var ErrInvalidRequest = errors.New("invalid avatar request")

// Derivative names in Avatar.URLs. Normal and Thumbnail are always present;
// the rest are produced only for premium photo-based generations.
const (
	URLNormal    = "normal"
	URLThumbnail = "thumbnail"
	URLProfile   = "profile"
	URLStory     = "story"
	URLPost      = "post"
	URLHD        = "hd"
)

var validSizes = map[string]bool{
	"512":  true,
	"1024": true,
	"2048": true,
}

// AvatarRequest carries the user-selected generation parameters. When
// CustomPrompt is set it supersedes every categorical trait.
type AvatarRequest struct {
	Gender           string   `json:"gender"`
	Age              string   `json:"age"`
	SkinTone         string   `json:"skin_tone"`
	HairStyle        string   `json:"hair_style"`
	HairColor        string   `json:"hair_color"`
	Outfit           string   `json:"outfit"`
	Accessories      []string `json:"accessories,omitempty"`
	Background       string   `json:"background"`
	ArtStyle         string   `json:"art_style"`
	AuraEffect       string   `json:"aura_effect"`
	Pose             string   `json:"pose"`
	Size             string   `json:"size"`
	CustomPrompt     string   `json:"custom_prompt,omitempty"`
	UploadedImageURL string   `json:"uploaded_image_url,omitempty"`
}

func (r *AvatarRequest) Validate() error {
	if !validSizes[r.Size] {
		return ErrInvalidRequest
	}
	if r.CustomPrompt == "" && r.UploadedImageURL == "" && r.ArtStyle == "" {
		return ErrInvalidRequest
	}
	return nil
}

// SizePixels returns the requested square resolution. Validate must have
// passed before calling.
func (r *AvatarRequest) SizePixels() int {
	n, _ := strconv.Atoi(r.Size)
	return n
}

// Variation is an alternate-style rendition of a photo-based avatar.
type Variation struct {
	Style string `json:"style"`
	URL   string `json:"url"`
}

// Avatar is the generated artifact. Only counters and visibility flags are
// mutated after creation; everything else is immutable.
type Avatar struct {
	ID         string            `db:"id" json:"id"`
	UserID     int64             `db:"user_id" json:"user_id"`
	UserName   string            `db:"user_name" json:"user_name,omitempty"`
	UserPhoto  string            `db:"user_photo" json:"user_photo,omitempty"`
	Prompt     string            `db:"prompt" json:"prompt"`
	Provider   string            `db:"provider" json:"provider"`
	URLs       map[string]string `db:"urls" json:"urls"`
	Variations []Variation       `db:"variations" json:"variations,omitempty"`
	Size       string            `db:"size" json:"size"`
	Premium    bool              `db:"premium" json:"premium"`
	Public     bool              `db:"public" json:"public"`
	Featured   bool              `db:"featured" json:"featured"`
	Likes      int64             `db:"likes" json:"likes"`
	Shares     int64             `db:"shares" json:"shares"`
	Comments   int64             `db:"comments" json:"comments"`
	LikedBy    []int64           `db:"liked_by" json:"liked_by,omitempty"`
	Hashtags   []string          `db:"hashtags" json:"hashtags,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// TrendingScore weighs shares above likes.
func (a *Avatar) TrendingScore() int64 {
	return a.Likes*2 + a.Shares*3
}

// PlatformStats is a one-snapshot aggregate over users and avatars.
type PlatformStats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalAvatars int64 `json:"total_avatars"`
	PremiumUsers int64 `json:"premium_users"`
}
