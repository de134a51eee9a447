package cache

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Client *redis.Client

func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("failed to connect to Redis")
	}
	log.Info().Str("addr", addr).Msg("Connected to Redis")
}
