package service

import (
	"context"
	"sort"

	"aura_avatar/internal/domain"
)

// TrendingSource lists public avatars that are candidates for the trending
// feed. Sources may return rows in any order; the ranking is enforced here.
type TrendingSource interface {
	ListTrending(ctx context.Context, limit int) ([]domain.Avatar, error)
}

// LeaderboardSource provides the creator totals and platform aggregates.
type LeaderboardSource interface {
	TopByTotalLikes(ctx context.Context, limit int) ([]domain.User, error)
	PlatformStats(ctx context.Context) (*domain.PlatformStats, error)
}

// LeaderboardEntry pairs a creator with their 1-based rank.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	PhotoURL     string `json:"photo_url,omitempty"`
	Premium      bool   `json:"premium"`
	TotalLikes   int64  `json:"total_likes"`
	TotalAvatars int64  `json:"total_avatars"`
}

type RankingService struct {
	avatars TrendingSource
	users   LeaderboardSource
}

func NewRankingService(avatars TrendingSource, users LeaderboardSource) *RankingService {
	return &RankingService{avatars: avatars, users: users}
}

// Trending returns public avatars by engagement score, newest first on ties.
func (s *RankingService) Trending(ctx context.Context, limit int) ([]domain.Avatar, error) {
	avatars, err := s.avatars.ListTrending(ctx, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(avatars, func(i, j int) bool {
		si, sj := avatars[i].TrendingScore(), avatars[j].TrendingScore()
		if si != sj {
			return si > sj
		}
		return avatars[i].CreatedAt.After(avatars[j].CreatedAt)
	})
	return avatars, nil
}

// Leaderboard ranks creators by lifetime likes received. Ranks are assigned
// from the stored ordering, so equal totals keep a stable relative order
// across calls.
func (s *RankingService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	users, err := s.users.TopByTotalLikes(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       u.ID,
			Name:         u.DisplayName,
			PhotoURL:     u.PhotoURL,
			Premium:      u.Premium,
			TotalLikes:   u.TotalLikes,
			TotalAvatars: u.TotalAvatars,
		})
	}
	return entries, nil
}

func (s *RankingService) Stats(ctx context.Context) (*domain.PlatformStats, error) {
	return s.users.PlatformStats(ctx)
}
