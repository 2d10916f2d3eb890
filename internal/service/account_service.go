package service

import (
	"context"
	"errors"
	"strings"

	"aura_avatar/internal/domain"

	"github.com/google/uuid"
)

var ErrInvalidProfile = errors.New("invalid auth profile")

// AccountStore is the user repository surface the account flows need.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByAuthUID(ctx context.Context, uid string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Upgrade(ctx context.Context, id int64) error
	UpdateProfile(ctx context.Context, id int64, displayName, photoURL string) error
}

type ReferralStore interface {
	GetOrCreateCode(ctx context.Context, userID int64, code string) (string, error)
	Apply(ctx context.Context, referredID int64, code string, award int) (*domain.Referral, error)
	ListByReferrer(ctx context.Context, referrerID int64) ([]domain.Referral, error)
}

// AuthProfile is the identity payload from the auth provider.
type AuthProfile struct {
	UID         string `json:"uid" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
}

// AccountService handles sign-in upserts, premium upgrades and referrals.
type AccountService struct {
	users           AccountStore
	referrals       ReferralStore
	freeCredits     int
	referralCredits int
}

func NewAccountService(users AccountStore, referrals ReferralStore, freeCredits, referralCredits int) *AccountService {
	return &AccountService{
		users:           users,
		referrals:       referrals,
		freeCredits:     freeCredits,
		referralCredits: referralCredits,
	}
}

// Authenticate returns the account for the given identity, creating it with
// the free credit allowance on first sign-in.
func (s *AccountService) Authenticate(ctx context.Context, p AuthProfile) (*domain.User, error) {
	if p.UID == "" {
		return nil, ErrInvalidProfile
	}

	user, err := s.users.GetByAuthUID(ctx, p.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.User{
		AuthUID:     p.UID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
		Credits:     s.freeCredits,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Upgrade flips the account to premium and returns the refreshed user.
// Upgrading twice is harmless.
func (s *AccountService) Upgrade(ctx context.Context, userID int64) (*domain.User, error) {
	if err := s.users.Upgrade(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdate carries the user-editable profile fields. Empty fields are
// left unchanged.
type ProfileUpdate struct {
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// UpdateProfile patches the account and returns the refreshed user.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*domain.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, strings.TrimSpace(upd.DisplayName), strings.TrimSpace(upd.PhotoURL)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

// ReferralCode returns the user's share code, minting one on first call.
func (s *AccountService) ReferralCode(ctx context.Context, userID int64) (string, error) {
	candidate := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return s.referrals.GetOrCreateCode(ctx, userID, candidate)
}

// ApplyReferral credits the code's owner. Each account can redeem one code,
// and never its own.
func (s *AccountService) ApplyReferral(ctx context.Context, userID int64, code string) (*domain.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.ErrInvalidReferralCode
	}
	return s.referrals.Apply(ctx, userID, code, s.referralCredits)
}

func (s *AccountService) Referrals(ctx context.Context, userID int64) ([]domain.Referral, error) {
	return s.referrals.ListByReferrer(ctx, userID)
}
