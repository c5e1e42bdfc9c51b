// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"slotwise/config"

	"github.com/go-redis/redis/v8"
)

// LockClient is the Redis client used for cross-instance coordination
// (currently the reaper leader lock).
var LockClient *redis.Client

// InitLockClient initializes the Redis client used for distributed locks.
func InitLockClient() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := LockClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the Redis client for distributed locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockClient()
	}
	return LockClient
}

// AcquireLock takes a best-effort distributed lock. It returns true when this
// process owns the lock for the given TTL.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return GetLockClient().SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock drops a lock taken with AcquireLock.
func ReleaseLock(ctx context.Context, key string) {
	_ = GetLockClient().Del(ctx, key).Err()
}
