package repository

import (
	"context"
	"errors"

	"aura_avatar/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, auth_uid, COALESCE(display_name, ''), COALESCE(email, ''), COALESCE(photo_url, ''),
	credits, premium, total_likes, total_shares, total_avatars,
	COALESCE(referral_code, ''), referred_by, role, created_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.AuthUID,
		&u.DisplayName,
		&u.Email,
		&u.PhotoURL,
		&u.Credits,
		&u.Premium,
		&u.TotalLikes,
		&u.TotalShares,
		&u.TotalAvatars,
		&u.ReferralCode,
		&u.ReferredBy,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByAuthUID(ctx context.Context, uid string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE auth_uid = $1`, uid)
	return scanUser(row)
}

// Create inserts a new account. Credits holds the free starting allowance.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO users (auth_uid, display_name, email, photo_url, credits, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.AuthUID, u.DisplayName, u.Email, u.PhotoURL, u.Credits, u.Role,
	).Scan(&u.ID, &u.CreatedAt)
}

// Upgrade flips the premium flag. One-way and idempotent: upgrading a
// premium account is a no-op.
func (r *UserRepository) Upgrade(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET premium = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateProfile changes the user-editable fields. Empty arguments leave the
// stored value alone, so callers can patch one field at a time.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, displayName, photoURL string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users SET
			display_name = COALESCE(NULLIF($1, ''), display_name),
			photo_url    = COALESCE(NULLIF($2, ''), photo_url)
		 WHERE id = $3`,
		displayName, photoURL, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddCredits adds n credits atomically and returns the new balance.
// Used for referral awards; independent of the spend path.
func (r *UserRepository) AddCredits(ctx context.Context, id int64, n int) (int, error) {
	var credits int
	err := r.db.QueryRow(ctx,
		`UPDATE users SET credits = credits + $1 WHERE id = $2 RETURNING credits`,
		n, id,
	).Scan(&credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}
	return credits, nil
}

// TopByTotalLikes returns the leaderboard ordering. The id tiebreak keeps
// the order stable across repeated calls on identical data.
func (r *UserRepository) TopByTotalLikes(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY total_likes DESC, id ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// PlatformStats computes all counts in a single statement so they come from
// one snapshot and cannot drift apart.
func (r *UserRepository) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	var s domain.PlatformStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM avatars),
			(SELECT COUNT(*) FROM users WHERE premium)`,
	).Scan(&s.TotalUsers, &s.TotalAvatars, &s.PremiumUsers)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
