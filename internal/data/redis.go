package data

import (
	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/vanish/internal/config"
)

// NewRedisClient creates and returns a new Redis client from configuration.
func NewRedisClient(c config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
}
