package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/mechanic-shop/internal/config"
)

const redisDialTimeout = 2 * time.Second

// Redis holds the client shared by the rate limiter and the list cache.
// The service keeps running when Redis is down; both middlewares then use
// process memory instead.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and probes it once so startup logs show
// which mode the middlewares will run in.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  storageOpTimeout,
		WriteTimeout: storageOpTimeout,
	})
	r := &Redis{Client: client}

	if err := r.Ping(ctx); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// FiberStorage returns a Redis-backed fiber.Storage namespaced by prefix, or
// nil when Redis does not answer so fiber middlewares keep state in memory.
func (r *Redis) FiberStorage(ctx context.Context, prefix string, logger *zap.Logger) fiber.Storage {
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unavailable; middleware state kept in memory", zap.String("prefix", prefix), zap.Error(err))
		return nil
	}
	return NewRedisStorage(r.Client, prefix)
}

// Ping verifies Redis connectivity within storageOpTimeout.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, storageOpTimeout)
	defer cancel()
	return r.Client.Ping(ctx).Err()
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
