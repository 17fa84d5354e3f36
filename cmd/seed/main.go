package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/sportsin/sportsin/config"
	"github.com/sportsin/sportsin/internal/infrastructure/localstore"
	pginfra "github.com/sportsin/sportsin/internal/infrastructure/postgres"
	"github.com/sportsin/sportsin/pkg/helpers"
)

// Seeds the demo roster into a postgres backend. Safe to run repeatedly:
// every insert is ON CONFLICT DO NOTHING.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	hash, err := helpers.HashPassword("password123")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	for _, p := range localstore.DemoProfiles() {
		if _, err := pool.Exec(ctx, `
			INSERT INTO accounts (id, email, password_hash, verified, username, sport, user_type, created_at)
			VALUES ($1, $2, $3, true, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Email, hash, p.Username, string(p.Sport), string(p.UserType), p.CreatedAt); err != nil {
			log.Fatalf("seed account %s: %v", p.Username, err)
		}

		if _, err := pool.Exec(ctx, `
			INSERT INTO profiles (id, username, email, full_name, avatar_url, sport, user_type, bio, location, website,
			                      followers_count, following_count, posts_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO NOTHING
		`, p.ID, p.Username, p.Email, p.FullName, p.AvatarURL, string(p.Sport), string(p.UserType),
			p.Bio, p.Location, p.Website, p.FollowersCount, p.FollowingCount, p.PostsCount, p.CreatedAt); err != nil {
			log.Fatalf("seed profile %s: %v", p.Username, err)
		}

		if _, err := pool.Exec(ctx, `
			INSERT INTO player_stats (user_id, created_at)
			VALUES ($1, $2)
			ON CONFLICT (user_id) DO NOTHING
		`, p.ID, p.CreatedAt); err != nil {
			log.Fatalf("seed stats %s: %v", p.Username, err)
		}

		logger.WithField("username", p.Username).Info("seeded")
	}

	logger.Info("demo data seeded")
}
