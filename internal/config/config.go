package config

import (
	"os"
	"strconv"
	"time"

	"aura_avatar/internal/logger"

	"github.com/joho/godotenv"
)

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Image generation vendors. Any of these may be empty; the matching
	// adapter then reports itself unavailable without a network call.
	GeminiAPIKey      string
	StabilityAPIKey   string
	ReplicateAPIToken string

	S3 S3Config

	FreeCredits     int
	ReferralCredits int
	VariationCount  int
	AdapterTimeout  time.Duration
	MaxUploadBytes  int64

	APIRateLimit    int
	APIRateWindow   time.Duration
	GenRateLimit    int
	GenRateWindow   time.Duration
}

// Load reads configuration from the environment (.env supported in dev).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	return &Config{
		AppPort:     envStr("APP_PORT", "8080"),
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		StabilityAPIKey:   os.Getenv("STABILITY_API_KEY"),
		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),

		S3: S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          envStr("S3_REGION", "auto"),
			Bucket:          os.Getenv("S3_BUCKET"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("S3_PUBLIC_URL"),
		},

		FreeCredits:     envInt("FREE_CREDITS", 3),
		ReferralCredits: envInt("REFERRAL_CREDITS", 5),
		VariationCount:  envInt("VARIATION_COUNT", 4),
		AdapterTimeout:  envDuration("ADAPTER_TIMEOUT_SECONDS", 60*time.Second),
		MaxUploadBytes:  int64(envInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,

		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envDuration("API_RATE_WINDOW_SECONDS", time.Minute),
		GenRateLimit:  envInt("GEN_RATE_LIMIT", 10),
		GenRateWindow: envDuration("GEN_RATE_WINDOW_SECONDS", time.Minute),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
