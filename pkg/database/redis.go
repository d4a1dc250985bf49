package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"mindcare-go/pkg/log"
)

var RDB *redis.Client

// InitRedis connects the Redis client. A failed ping is logged and RDB stays
// nil, since Redis only backs the insights cache and consumer retry counters.
func InitRedis(addr, password string, db int) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Error("failed to connect to redis, insights cache disabled", err)
		_ = client.Close()
		return
	}

	RDB = client
	log.Info("Redis client connected successfully")
}
