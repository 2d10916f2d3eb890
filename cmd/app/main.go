package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aura_avatar/internal/config"
	"aura_avatar/internal/db"
	"aura_avatar/internal/generator"
	httpServer "aura_avatar/internal/http"
	"aura_avatar/internal/http/handlers"
	"aura_avatar/internal/http/middleware"
	"aura_avatar/internal/imageproc"
	"aura_avatar/internal/logger"
	"aura_avatar/internal/provider"
	"aura_avatar/internal/repository"
	"aura_avatar/internal/service"
	"aura_avatar/internal/storage"
	"aura_avatar/internal/ws"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT") == "json")
	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	ctx := context.Background()

	// Provider chain: primary, secondary, then the deterministic fallback.
	gemini := provider.NewGemini(ctx, cfg.GeminiAPIKey)
	stability := provider.NewStability(cfg.StabilityAPIKey)
	replicate := provider.NewReplicate(cfg.ReplicateAPIToken)
	dicebear := provider.NewDiceBear()

	orchestrator := generator.New(
		[]provider.Generator{gemini, stability, dicebear},
		[]provider.PhotoTransformer{replicate},
		gemini,
		generator.Options{
			AdapterTimeout: cfg.AdapterTimeout,
			VariationCount: cfg.VariationCount,
		},
	)

	var store service.BlobStore
	var deriver service.Deriver
	if cfg.S3.Bucket != "" {
		s3Store, err := storage.NewS3Store(storage.Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicURL:       cfg.S3.PublicURL,
		})
		if err != nil {
			logger.Fatal("init s3 store", "error", err)
		}
		store = s3Store
		deriver = imageproc.NewFanout(imageproc.ImagingResizer{}, s3Store)
	} else {
		logger.Warn("no bucket configured, uploads and derivatives disabled")
	}

	userRepo := repository.NewUserRepository(dbPool)
	avatarRepo := repository.NewAvatarRepository(dbPool)
	commentRepo := repository.NewCommentRepository(dbPool)
	referralRepo := repository.NewReferralRepository(dbPool)

	hub := ws.NewHub()

	accounts := service.NewAccountService(userRepo, referralRepo, cfg.FreeCredits, cfg.ReferralCredits)
	generation := service.NewGenerationService(userRepo, avatarRepo, orchestrator, store, deriver, gemini, replicate, hub)
	engagement := service.NewEngagementService(avatarRepo, commentRepo, hub)
	ranking := service.NewRankingService(avatarRepo, userRepo)

	h := handlers.NewHandler(accounts, generation, engagement, ranking, store, cfg.MaxUploadBytes)
	health := handlers.NewHealthHandler(dbPool, hub, version)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	httpServer.RegisterRoutes(r, h, health, hub, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
