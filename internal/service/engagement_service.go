package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"aura_avatar/internal/domain"

	"github.com/google/uuid"
)

var ErrEmptyComment = errors.New("comment text is empty")

const maxCommentLen = 500

// EngagementStore covers reads and the counter mutations on avatars.
type EngagementStore interface {
	GetByID(ctx context.Context, id string) (*domain.Avatar, error)
	ListPublic(ctx context.Context, limit int) ([]domain.Avatar, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Avatar, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Avatar, error)
	Like(ctx context.Context, avatarID string, userID int64) (int64, error)
	Unlike(ctx context.Context, avatarID string, userID int64) (int64, error)
	Share(ctx context.Context, avatarID string) (int64, error)
	SetFeatured(ctx context.Context, avatarID string, featured bool) error
}

type CommentStore interface {
	Create(ctx context.Context, c *domain.Comment) error
	ListByAvatar(ctx context.Context, avatarID string) ([]domain.Comment, error)
}

// EngagementFeed pushes counter changes to the live feed. May be nil.
type EngagementFeed interface {
	PublishLike(avatarID string, likes int64)
	PublishShare(avatarID string, shares int64)
}

// EngagementService handles the social surface: gallery reads, likes,
// shares, comments and admin curation.
type EngagementService struct {
	avatars  EngagementStore
	comments CommentStore
	feed     EngagementFeed
}

func NewEngagementService(avatars EngagementStore, comments CommentStore, feed EngagementFeed) *EngagementService {
	return &EngagementService{avatars: avatars, comments: comments, feed: feed}
}

func (s *EngagementService) Get(ctx context.Context, avatarID string) (*domain.Avatar, error) {
	return s.avatars.GetByID(ctx, avatarID)
}

func (s *EngagementService) Gallery(ctx context.Context, limit int) ([]domain.Avatar, error) {
	return s.avatars.ListPublic(ctx, limit)
}

func (s *EngagementService) Featured(ctx context.Context, limit int) ([]domain.Avatar, error) {
	return s.avatars.ListFeatured(ctx, limit)
}

func (s *EngagementService) UserAvatars(ctx context.Context, userID int64) ([]domain.Avatar, error) {
	return s.avatars.ListByUser(ctx, userID)
}

// Like is idempotent: liking an avatar the user already likes returns the
// unchanged count.
func (s *EngagementService) Like(ctx context.Context, avatarID string, userID int64) (int64, error) {
	likes, err := s.avatars.Like(ctx, avatarID, userID)
	if err != nil {
		return 0, err
	}
	if s.feed != nil {
		s.feed.PublishLike(avatarID, likes)
	}
	return likes, nil
}

// Unlike is the inverse of Like and equally idempotent.
func (s *EngagementService) Unlike(ctx context.Context, avatarID string, userID int64) (int64, error) {
	likes, err := s.avatars.Unlike(ctx, avatarID, userID)
	if err != nil {
		return 0, err
	}
	if s.feed != nil {
		s.feed.PublishLike(avatarID, likes)
	}
	return likes, nil
}

func (s *EngagementService) Share(ctx context.Context, avatarID string) (int64, error) {
	shares, err := s.avatars.Share(ctx, avatarID)
	if err != nil {
		return 0, err
	}
	if s.feed != nil {
		s.feed.PublishShare(avatarID, shares)
	}
	return shares, nil
}

func (s *EngagementService) Comment(ctx context.Context, avatarID string, user *domain.User, text string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if len(text) > maxCommentLen {
		// Back off to a rune boundary so the cut never leaves invalid UTF-8.
		cut := maxCommentLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	c := &domain.Comment{
		ID:        uuid.NewString(),
		AvatarID:  avatarID,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		UserPhoto: user.PhotoURL,
		Text:      text,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *EngagementService) Comments(ctx context.Context, avatarID string) ([]domain.Comment, error) {
	return s.comments.ListByAvatar(ctx, avatarID)
}

// SetFeatured curates the featured gallery. Callers enforce the admin role.
func (s *EngagementService) SetFeatured(ctx context.Context, avatarID string, featured bool) error {
	return s.avatars.SetFeatured(ctx, avatarID, featured)
}
