package domain

import "errors"

// Sentinel errors shared by repositories and services. Handlers map these to
// HTTP statuses; policy and validation errors are surfaced verbatim, never
// retried.
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrAvatarNotFound        = errors.New("avatar not found")
	ErrNoCredits             = errors.New("no credits remaining")
	ErrSizeRequiresPremium   = errors.New("requested size requires premium")
	ErrPremiumRequired       = errors.New("premium required")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrAlreadyReferred       = errors.New("user already referred")
	ErrInvalidReferralCode   = errors.New("invalid referral code")
	ErrForbidden             = errors.New("forbidden")
)
