package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/mechanic-shop/internal/config"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

func passthrough(c *fiber.Ctx) error {
	return c.Next()
}

// NewRateLimiter throttles per client IP. Counters are kept in storage, or in
// process memory when storage is nil. A zero rule disables throttling.
func NewRateLimiter(name string, rule config.RateLimit, storage fiber.Storage) fiber.Handler {
	if rule.Max <= 0 || rule.Window <= 0 {
		return passthrough
	}
	return limiter.New(limiter.Config{
		Max:        rule.Max,
		Expiration: rule.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.NewRateLimited()
		},
		Storage: storage,
	})
}

// NewListCache caches successful GET responses keyed by path and query
// string, so each page and search term is cached separately.
func NewListCache(ttl time.Duration, storage fiber.Storage) fiber.Handler {
	if ttl <= 0 {
		return passthrough
	}
	return cache.New(cache.Config{
		Expiration:   ttl,
		CacheHeader:  "X-Cache",
		CacheControl: true,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.CopyString(c.OriginalURL())
		},
		Storage: storage,
	})
}
