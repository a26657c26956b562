package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/mechanic-shop/internal/config"
	"github.com/spec-kit/mechanic-shop/internal/observability"
)

// ServerOptions configures NewServer. Nil storages keep limiter counters and
// cached responses in process memory.
type ServerOptions struct {
	App            config.AppConfig
	RateLimit      config.RateLimitConfig
	Cache          config.CacheConfig
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	LimiterStorage fiber.Storage
	CacheStorage   fiber.Storage
	Routes         RouteConfig
}

// NewServer builds the fiber app with middlewares, throttling and routes.
func NewServer(opts ServerOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.App.Name,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, opts.Metrics, opts.App.RequestTimeout())

	routes := opts.Routes
	if opts.RateLimit.Enabled {
		global := NewRateLimiter("global", opts.RateLimit.Global, opts.LimiterStorage)
		app.Use(func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/health") {
				return c.Next()
			}
			return global(c)
		})
		if routes.LoginLimiter == nil {
			routes.LoginLimiter = NewRateLimiter("login", opts.RateLimit.Login, opts.LimiterStorage)
		}
		if routes.CreateLimiter == nil {
			routes.CreateLimiter = NewRateLimiter("create", opts.RateLimit.Create, opts.LimiterStorage)
		}
	}
	if opts.Cache.Enabled && routes.ListCache == nil {
		routes.ListCache = NewListCache(opts.Cache.ListTTL, opts.CacheStorage)
	}

	RegisterRoutes(app, routes)
	return app
}
