package http

import (
	"aura_avatar/internal/config"
	"aura_avatar/internal/http/handlers"
	"aura_avatar/internal/http/middleware"
	"aura_avatar/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	api.POST("/auth", h.Auth)

	// Account
	api.GET("/me", middleware.JWT(), h.Me)
	api.GET("/me/avatars", middleware.JWT(), h.MyAvatars)
	api.POST("/user/upgrade", middleware.JWT(), h.Upgrade)
	api.PATCH("/user/:id", middleware.JWT(), h.UpdateUser)

	// Generation (per-user limiter on top of the IP limiter)
	genRL := middleware.GenerationRateLimit(cfg.GenRateLimit, cfg.GenRateWindow)
	api.POST("/avatars/generate", middleware.JWT(), genRL, h.Generate)
	api.POST("/generate-variations", middleware.JWT(), h.GenerateVariations)
	api.POST("/remove-background", middleware.JWT(), h.RemoveBackground)
	api.POST("/prompt/enhance", middleware.JWT(), h.EnhancePrompt)
	api.POST("/hashtags/generate", h.Hashtags)
	api.POST("/upload-image", middleware.JWT(), middleware.SimpleRateLimit(cfg.APIRateLimit, cfg.APIRateWindow), h.Upload)

	// Gallery
	api.GET("/avatars", h.Gallery)
	api.GET("/avatars/trending", h.Trending)
	api.GET("/avatars/featured", h.Featured)
	api.GET("/avatars/user/:id", middleware.JWT(), h.UserAvatars)
	api.GET("/avatars/:id", h.GetAvatar)
	api.GET("/avatars/:id/download-all", h.DownloadAll)

	// Social
	api.POST("/avatars/:id/like", middleware.JWT(), h.Like)
	api.POST("/avatars/:id/unlike", middleware.JWT(), h.Unlike)
	api.POST("/avatars/:id/share", h.Share)
	api.GET("/avatars/:id/comments", h.ListComments)
	api.POST("/avatars/:id/comments", middleware.JWT(), h.AddComment)

	// Curation (admin)
	api.PATCH("/avatars/:id/feature", middleware.JWT(), h.Feature)

	// Community
	api.GET("/leaderboard", h.Leaderboard)
	api.GET("/stats", h.Stats)

	// Referral system
	referrals := api.Group("/referrals")
	referrals.Use(middleware.JWT())
	{
		referrals.GET("", h.MyReferrals)
		referrals.GET("/code", h.ReferralCode)
		referrals.POST("/apply", h.ApplyReferral)
	}

	// Live feed
	r.GET("/ws", h.WS(hub))
}
