package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"aura_avatar/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const avatarColumns = `a.id, a.user_id, COALESCE(u.display_name, ''), COALESCE(u.photo_url, ''),
	a.prompt, a.provider, a.urls, a.variations, a.size, a.premium, a.public, a.featured,
	a.likes, a.shares, a.comments, COALESCE(a.hashtags, '{}'), a.created_at`

type AvatarRepository struct {
	db *pgxpool.Pool
}

func NewAvatarRepository(db *pgxpool.Pool) *AvatarRepository {
	return &AvatarRepository{db: db}
}

func scanAvatar(row pgx.Row) (*domain.Avatar, error) {
	var (
		a          domain.Avatar
		urls       []byte
		variations []byte
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.UserName,
		&a.UserPhoto,
		&a.Prompt,
		&a.Provider,
		&urls,
		&variations,
		&a.Size,
		&a.Premium,
		&a.Public,
		&a.Featured,
		&a.Likes,
		&a.Shares,
		&a.Comments,
		&a.Hashtags,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAvatarNotFound
		}
		return nil, err
	}
	if len(urls) > 0 {
		if err := json.Unmarshal(urls, &a.URLs); err != nil {
			return nil, fmt.Errorf("decode avatar urls: %w", err)
		}
	}
	if len(variations) > 0 {
		if err := json.Unmarshal(variations, &a.Variations); err != nil {
			return nil, fmt.Errorf("decode avatar variations: %w", err)
		}
	}
	return &a, nil
}

// CreateWithCredit inserts the avatar and, when spendCredit is set, deducts
// one credit from the owner in the same transaction. The deduction only
// matches rows with a positive balance, so concurrent spends can never push
// credits below zero; a zero-row update rolls the insert back and reports
// ErrNoCredits. Returns the remaining balance (-1 when nothing was spent).
func (r *AvatarRepository) CreateWithCredit(ctx context.Context, a *domain.Avatar, spendCredit bool) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	urls, err := json.Marshal(a.URLs)
	if err != nil {
		return 0, fmt.Errorf("encode avatar urls: %w", err)
	}
	variations, err := json.Marshal(a.Variations)
	if err != nil {
		return 0, fmt.Errorf("encode avatar variations: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO avatars (id, user_id, prompt, provider, urls, variations, size, premium, public, featured, hashtags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
		 RETURNING created_at`,
		a.ID, a.UserID, a.Prompt, a.Provider, urls, variations, a.Size, a.Premium, a.Public, a.Hashtags,
	).Scan(&a.CreatedAt)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_avatars = total_avatars + 1 WHERE id = $1`, a.UserID,
	); err != nil {
		return 0, err
	}

	remaining := -1
	if spendCredit {
		err = tx.QueryRow(ctx,
			`UPDATE users SET credits = credits - 1 WHERE id = $1 AND credits > 0 RETURNING credits`,
			a.UserID,
		).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, domain.ErrNoCredits
			}
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *AvatarRepository) GetByID(ctx context.Context, id string) (*domain.Avatar, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+avatarColumns+` FROM avatars a JOIN users u ON u.id = a.user_id WHERE a.id = $1`, id)
	a, err := scanAvatar(row)
	if err != nil {
		return nil, err
	}
	a.LikedBy, err = r.likedBy(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AvatarRepository) likedBy(ctx context.Context, avatarID string) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM avatar_likes WHERE avatar_id = $1 ORDER BY created_at`, avatarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AvatarRepository) list(ctx context.Context, where, order string, args ...any) ([]domain.Avatar, error) {
	q := `SELECT ` + avatarColumns + ` FROM avatars a JOIN users u ON u.id = a.user_id ` + where + ` ` + order
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var avatars []domain.Avatar
	for rows.Next() {
		a, err := scanAvatar(rows)
		if err != nil {
			return nil, err
		}
		avatars = append(avatars, *a)
	}
	return avatars, rows.Err()
}

func (r *AvatarRepository) ListPublic(ctx context.Context, limit int) ([]domain.Avatar, error) {
	return r.list(ctx, `WHERE a.public`, `ORDER BY a.created_at DESC LIMIT $1`, limit)
}

func (r *AvatarRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Avatar, error) {
	return r.list(ctx, `WHERE a.public AND a.featured`, `ORDER BY a.created_at DESC LIMIT $1`, limit)
}

func (r *AvatarRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Avatar, error) {
	return r.list(ctx, `WHERE a.user_id = $1`, `ORDER BY a.created_at DESC`, userID)
}

// ListTrending orders by the engagement score with newest first on ties.
func (r *AvatarRepository) ListTrending(ctx context.Context, limit int) ([]domain.Avatar, error) {
	return r.list(ctx, `WHERE a.public`,
		`ORDER BY (a.likes * 2 + a.shares * 3) DESC, a.created_at DESC LIMIT $1`, limit)
}

// Like records userID's like. The join-table insert is the source of truth:
// ON CONFLICT DO NOTHING makes repeats no-ops, and the counters only move
// when a row was actually inserted, so likes always equals the liker set.
func (r *AvatarRepository) Like(ctx context.Context, avatarID string, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO avatar_likes (avatar_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		avatarID, userID)
	if err != nil {
		// A FK violation here means the avatar (or user) row is gone.
		if isFKViolation(err) {
			return 0, domain.ErrAvatarNotFound
		}
		return 0, err
	}

	if tag.RowsAffected() == 0 {
		var likes int64
		err = tx.QueryRow(ctx, `SELECT likes FROM avatars WHERE id = $1`, avatarID).Scan(&likes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, domain.ErrAvatarNotFound
			}
			return 0, err
		}
		return likes, tx.Commit(ctx)
	}

	var (
		likes   int64
		ownerID int64
	)
	err = tx.QueryRow(ctx,
		`UPDATE avatars SET likes = likes + 1 WHERE id = $1 RETURNING likes, user_id`,
		avatarID).Scan(&likes, &ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAvatarNotFound
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_likes = total_likes + 1 WHERE id = $1`, ownerID,
	); err != nil {
		return 0, err
	}

	return likes, tx.Commit(ctx)
}

// Unlike is the mirror of Like: deleting a row that is not there changes
// nothing, including the counters.
func (r *AvatarRepository) Unlike(ctx context.Context, avatarID string, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM avatar_likes WHERE avatar_id = $1 AND user_id = $2`,
		avatarID, userID)
	if err != nil {
		return 0, err
	}

	if tag.RowsAffected() == 0 {
		var likes int64
		err = tx.QueryRow(ctx, `SELECT likes FROM avatars WHERE id = $1`, avatarID).Scan(&likes)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, domain.ErrAvatarNotFound
			}
			return 0, err
		}
		return likes, tx.Commit(ctx)
	}

	var (
		likes   int64
		ownerID int64
	)
	err = tx.QueryRow(ctx,
		`UPDATE avatars SET likes = likes - 1 WHERE id = $1 RETURNING likes, user_id`,
		avatarID).Scan(&likes, &ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAvatarNotFound
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_likes = total_likes - 1 WHERE id = $1`, ownerID,
	); err != nil {
		return 0, err
	}

	return likes, tx.Commit(ctx)
}

// Share bumps the share counter on the avatar and its owner. Shares are not
// deduplicated; every call counts.
func (r *AvatarRepository) Share(ctx context.Context, avatarID string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var (
		shares  int64
		ownerID int64
	)
	err = tx.QueryRow(ctx,
		`UPDATE avatars SET shares = shares + 1 WHERE id = $1 RETURNING shares, user_id`,
		avatarID).Scan(&shares, &ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAvatarNotFound
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET total_shares = total_shares + 1 WHERE id = $1`, ownerID,
	); err != nil {
		return 0, err
	}

	return shares, tx.Commit(ctx)
}

func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (r *AvatarRepository) SetFeatured(ctx context.Context, avatarID string, featured bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE avatars SET featured = $1 WHERE id = $2`, featured, avatarID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAvatarNotFound
	}
	return nil
}
