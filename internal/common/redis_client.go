package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surfari/boardwalk/internal/logging"
)

// NewRedisClient builds the shared Redis client used by the dashboard
// session store and the single-use link tokens.
func NewRedisClient(host, port, password string) *redis.Client {
	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Return the client anyway; the pool reconnects on demand.
		logging.Warn("Redis ping failed", "addr", addr, "error", err.Error())
		return client
	}

	logging.Info("Connected to Redis", "addr", addr)
	return client
}
