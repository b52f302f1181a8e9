package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/nimoapp/nimo-backend/config"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance (nil when Redis is not configured)
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// BlacklistToken marks a bearer token as revoked until its natural expiry.
// Logout is otherwise client-side token discard; the blacklist is best-effort.
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := client.Set(ctx, key, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}
	return nil
}

// IsTokenBlacklisted checks if a bearer token has been revoked.
// Without a configured Redis the check is a no-op.
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}
	return val == "revoked", nil
}

// MarkSessionStale records that a user's embedded session claims no longer
// match the database (set by admin verification, cleared on refresh). Purely
// advisory: the session endpoint surfaces it so clients know to call the
// refresh endpoint.
func MarkSessionStale(ctx context.Context, userID uint, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	key := fmt.Sprintf("session_stale:%d", userID)
	return client.Set(ctx, key, "1", ttl).Err()
}

// IsSessionStale reports whether the user's embedded claims were flagged as
// lagging the database. Without a configured Redis the answer is always false.
func IsSessionStale(ctx context.Context, userID uint) (bool, error) {
	if client == nil {
		return false, nil
	}
	n, err := client.Exists(ctx, fmt.Sprintf("session_stale:%d", userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearSessionStale removes the stale mark after a successful claim refresh.
func ClearSessionStale(ctx context.Context, userID uint) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, fmt.Sprintf("session_stale:%d", userID)).Err()
}
