package repository

import (
	"context"
	"errors"

	"aura_avatar/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// GetOrCreateCode returns the user's referral code, assigning one on first
// use. The WHERE guard makes concurrent first calls converge on one code.
func (r *ReferralRepository) GetOrCreateCode(ctx context.Context, userID int64, code string) (string, error) {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET referral_code = $1 WHERE id = $2 AND referral_code IS NULL`,
		code, userID)
	if err != nil {
		return "", err
	}

	var current string
	err = r.db.QueryRow(ctx,
		`SELECT referral_code FROM users WHERE id = $1`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}
	return current, nil
}

// Apply links referredID to the owner of code and pays the award to the
// referrer. A user can be referred at most once and never by themselves;
// both the link and the payout happen in the same transaction.
func (r *ReferralRepository) Apply(ctx context.Context, referredID int64, code string, award int) (*domain.Referral, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var referrerID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM users WHERE referral_code = $1`, code).Scan(&referrerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidReferralCode
		}
		return nil, err
	}
	if referrerID == referredID {
		return nil, domain.ErrInvalidReferralCode
	}

	ref := &domain.Referral{
		ReferrerID:     referrerID,
		ReferredID:     referredID,
		CreditsAwarded: award,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referred_id, credits_awarded)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (referred_id) DO NOTHING
		 RETURNING id, created_at`,
		referrerID, referredID, award,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlreadyReferred
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE id = $2`, referrerID, referredID,
	); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET credits = credits + $1 WHERE id = $2`, award, referrerID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, referrer_id, referred_id, credits_awarded, created_at
		FROM referrals
		WHERE referrer_id = $1
		ORDER BY created_at DESC`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.CreditsAwarded, &ref.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
