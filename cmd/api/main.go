package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/mechanic-shop/internal/api/http"
	"github.com/spec-kit/mechanic-shop/internal/api/http/handlers"
	"github.com/spec-kit/mechanic-shop/internal/auth"
	"github.com/spec-kit/mechanic-shop/internal/config"
	"github.com/spec-kit/mechanic-shop/internal/events"
	"github.com/spec-kit/mechanic-shop/internal/observability"
	"github.com/spec-kit/mechanic-shop/internal/persistence"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	"github.com/spec-kit/mechanic-shop/internal/repository/memory"
	"github.com/spec-kit/mechanic-shop/internal/service"
	"github.com/spec-kit/mechanic-shop/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store
	dependencies := map[string]handlers.Pinger{}
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.DB, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.DB)
		dependencies["postgres"] = pg
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		store = memory.NewStore()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	dependencies["redis"] = redis

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifier := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	customerService := service.NewCustomerService(service.CustomerDependencies{
		Store:  store,
		Hasher: auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
	})
	ticketService := service.NewServiceTicketService(service.ServiceTicketDependencies{
		Store:      store,
		Dispatcher: dispatcher,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(httptransport.ServerOptions{
		App:            cfg.App,
		RateLimit:      cfg.RateLimit,
		Cache:          cfg.Cache,
		Logger:         logger,
		Metrics:        metrics,
		LimiterStorage: redis.FiberStorage(ctx, "limiter:", logger),
		CacheStorage:   redis.FiberStorage(ctx, "cache:", logger),
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies, metrics),
			Customers:      handlers.NewCustomersHandler(customerService),
			Mechanics:      handlers.NewMechanicsHandler(service.NewMechanicService(store)),
			Inventory:      handlers.NewInventoryHandler(service.NewInventoryService(store)),
			ServiceTickets: handlers.NewServiceTicketsHandler(ticketService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repositories().Customers),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	if notifier != nil {
		notifier.Wait()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
