package handlers

import (
	"errors"
	"net/http"

	"aura_avatar/internal/domain"
	"aura_avatar/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Accounts   *service.AccountService
	Generation *service.GenerationService
	Engagement *service.EngagementService
	Ranking    *service.RankingService
	Store      service.BlobStore
	MaxUpload  int64
}

func NewHandler(accounts *service.AccountService, generation *service.GenerationService, engagement *service.EngagementService, ranking *service.RankingService, store service.BlobStore, maxUpload int64) *Handler {
	return &Handler{
		Accounts:   accounts,
		Generation: generation,
		Engagement: engagement,
		Ranking:    ranking,
		Store:      store,
		MaxUpload:  maxUpload,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c interface{ Get(any) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// respondError maps domain sentinels to HTTP statuses and stable error codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST"})
	case errors.Is(err, domain.ErrNoCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "NO_CREDITS"})
	case errors.Is(err, domain.ErrSizeRequiresPremium):
		c.JSON(http.StatusForbidden, gin.H{"error": "SIZE_REQUIRES_PREMIUM"})
	case errors.Is(err, domain.ErrPremiumRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "PREMIUM_REQUIRED"})
	case errors.Is(err, domain.ErrGenerationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GENERATION_UNAVAILABLE"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "USER_NOT_FOUND"})
	case errors.Is(err, domain.ErrAvatarNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "AVATAR_NOT_FOUND"})
	case errors.Is(err, domain.ErrAlreadyReferred):
		c.JSON(http.StatusConflict, gin.H{"error": "ALREADY_REFERRED"})
	case errors.Is(err, domain.ErrInvalidReferralCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REFERRAL_CODE"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "FORBIDDEN"})
	case errors.Is(err, service.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "EMPTY_COMMENT"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL"})
	}
}

func userJSON(u *domain.User) gin.H {
	return gin.H{
		"id":            u.ID,
		"display_name":  u.DisplayName,
		"email":         u.Email,
		"photo_url":     u.PhotoURL,
		"credits":       u.Credits,
		"premium":       u.Premium,
		"total_likes":   u.TotalLikes,
		"total_shares":  u.TotalShares,
		"total_avatars": u.TotalAvatars,
		"created_at":    u.CreatedAt,
	}
}
