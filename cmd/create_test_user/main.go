package main

import (
	"context"
	"log"
	"os"

	"aura_avatar/internal/db"
	"aura_avatar/internal/domain"
	"aura_avatar/internal/repository"
	"aura_avatar/internal/service"
)

func main() {
	// expects DATABASE_URL and JWT_SECRET env vars
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	repo := repository.NewUserRepository(pool)
	ctx := context.Background()

	uid := "test-uid-1"

	existing, err := repo.GetByAuthUID(ctx, uid)
	var u *domain.User
	if err == nil {
		u = existing
		log.Printf("user already exists id=%d\n", u.ID)
	} else {
		u = &domain.User{
			AuthUID:     uid,
			DisplayName: "Tester",
			Email:       "tester@example.com",
			Credits:     3,
		}

		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user failed: %v", err)
		}

		log.Printf("user created id=%d\n", u.ID)
	}

	// verify read
	u2, err := repo.GetByAuthUID(ctx, uid)
	if err != nil {
		log.Fatalf("get by auth uid failed: %v", err)
	}
	log.Printf("fetched user id=%d name=%s credits=%d created_at=%v\n", u2.ID, u2.DisplayName, u2.Credits, u2.CreatedAt)

	// initialize JWT and print token
	service.InitJWT(os.Getenv("JWT_SECRET"))
	token, err := service.GenerateJWT(u2.ID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
