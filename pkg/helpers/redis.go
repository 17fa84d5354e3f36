package helpers

import (
	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client for tokens, restorable session
// records, and rate limiting.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Redis key builders. Keeping them in one place avoids drift between the
// credential store and the middleware.

// KeyVerifyToken maps an email-verification token to an account id.
func KeyVerifyToken(token string) string { return "email:verify:token:" + token }

// KeySession holds the restorable session record for a user.
func KeySession(userID string) string { return "user:session:" + userID }
