package service

import (
	"context"
	"testing"
	"time"

	"aura_avatar/internal/domain"
)

type fakeTrendingSource struct {
	avatars []domain.Avatar
}

func (f *fakeTrendingSource) ListTrending(ctx context.Context, limit int) ([]domain.Avatar, error) {
	out := make([]domain.Avatar, len(f.avatars))
	copy(out, f.avatars)
	return out, nil
}

type fakeLeaderboardSource struct {
	users []domain.User
	stats domain.PlatformStats
}

func (f *fakeLeaderboardSource) TopByTotalLikes(ctx context.Context, limit int) ([]domain.User, error) {
	out := make([]domain.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeLeaderboardSource) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	s := f.stats
	return &s, nil
}

func TestTrendingOrdersByScore(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// A: 10*2 = 20, B: 6*2 = 12, C: 5*2 + 2*3 = 16
	src := &fakeTrendingSource{avatars: []domain.Avatar{
		{ID: "B", Likes: 6, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "A", Likes: 10, CreatedAt: base},
		{ID: "C", Likes: 5, Shares: 2, CreatedAt: base.Add(time.Hour)},
	}}
	svc := NewRankingService(src, nil)

	got, err := svc.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}

	want := []string{"A", "C", "B"}
	if len(got) != len(want) {
		t.Fatalf("got %d avatars, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestTrendingTiesNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Same score 12: one from 4 shares, one from 6 likes.
	src := &fakeTrendingSource{avatars: []domain.Avatar{
		{ID: "old", Shares: 4, CreatedAt: base},
		{ID: "new", Likes: 6, CreatedAt: base.Add(time.Hour)},
	}}
	svc := NewRankingService(src, nil)

	got, err := svc.Trending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("tie order = [%s %s], want [new old]", got[0].ID, got[1].ID)
	}
}

func TestLeaderboardRanksAreOneBased(t *testing.T) {
	src := &fakeLeaderboardSource{users: []domain.User{
		{ID: 7, DisplayName: "ana", TotalLikes: 40},
		{ID: 2, DisplayName: "bo", TotalLikes: 40},
		{ID: 9, DisplayName: "cy", TotalLikes: 5},
	}}
	svc := NewRankingService(nil, src)

	entries, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, e.Rank, i+1)
		}
	}
	// Equal totals keep the stored order.
	if entries[0].UserID != 7 || entries[1].UserID != 2 {
		t.Errorf("tie order = [%d %d], want [7 2]", entries[0].UserID, entries[1].UserID)
	}
}

func TestLeaderboardIsStableAcrossCalls(t *testing.T) {
	src := &fakeLeaderboardSource{users: []domain.User{
		{ID: 1, TotalLikes: 10},
		{ID: 2, TotalLikes: 10},
	}}
	svc := NewRankingService(nil, src)

	first, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	second, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	for i := range first {
		if first[i].UserID != second[i].UserID || first[i].Rank != second[i].Rank {
			t.Errorf("position %d changed between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestStatsPassthrough(t *testing.T) {
	src := &fakeLeaderboardSource{stats: domain.PlatformStats{TotalUsers: 12, TotalAvatars: 30, PremiumUsers: 4}}
	svc := NewRankingService(nil, src)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got.TotalUsers != 12 || got.TotalAvatars != 30 || got.PremiumUsers != 4 {
		t.Errorf("stats = %+v", got)
	}
}
