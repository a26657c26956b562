// shopctl runs administrative tasks against the shop database:
//
//	shopctl migrate   apply pending migrations
//	shopctl seed      apply pending migrations, then insert the demo data set
//	shopctl reset     drop every table and migrate again
//
// The database is taken from POSTGRES_DSN unless --dsn is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/mechanic-shop/internal/auth"
	"github.com/spec-kit/mechanic-shop/internal/config"
	"github.com/spec-kit/mechanic-shop/internal/observability"
	"github.com/spec-kit/mechanic-shop/internal/persistence"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	"github.com/spec-kit/mechanic-shop/internal/seed"
	"github.com/spec-kit/mechanic-shop/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var dsn string
	var withSeed bool

	flagSet := pflag.NewFlagSet("shopctl", pflag.ContinueOnError)
	flagSet.StringVar(&dsn, "dsn", "", "postgres connection string (default: $POSTGRES_DSN)")
	flagSet.BoolVar(&withSeed, "seed", false, "seed demo data after reset")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: shopctl [flags] migrate|seed|reset")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return errors.New("expected exactly one command")
	}
	steps, err := plan(flagSet.Arg(0), withSeed)
	if err != nil {
		flagSet.Usage()
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dsn != "" {
		cfg.Postgres.DSN = dsn
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("no database configured: set POSTGRES_DSN or --dsn")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	store := repository.NewPostgresStore(pg.DB)
	for _, st := range steps {
		var stepErr error
		switch st {
		case stepMigrate:
			stepErr = persistence.RunMigrations(ctx, pg.DB, logger)
		case stepReset:
			stepErr = persistence.ResetSchema(ctx, pg.DB, logger)
		case stepSeed:
			stepErr = seedDemo(ctx, cfg, store, logger)
		}
		if stepErr != nil {
			return fmt.Errorf("%s: %w", st, stepErr)
		}
	}
	return nil
}

type step string

const (
	stepMigrate step = "migrate"
	stepReset   step = "reset"
	stepSeed    step = "seed"
)

// plan expands a command into the steps it runs. Seeding always runs after
// the schema is current, so it never hits a missing table.
func plan(command string, seedAfterReset bool) ([]step, error) {
	switch command {
	case "migrate":
		return []step{stepMigrate}, nil
	case "seed":
		return []step{stepMigrate, stepSeed}, nil
	case "reset":
		if seedAfterReset {
			return []step{stepReset, stepSeed}, nil
		}
		return []step{stepReset}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func seedDemo(ctx context.Context, cfg *config.Config, store repository.Store, logger *zap.Logger) error {
	summary, err := seed.Run(ctx, seed.Services{
		Customers: service.NewCustomerService(service.CustomerDependencies{
			Store:  store,
			Hasher: auth.NewPasswordHasher(cfg.Auth.BcryptCost),
			Tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		}),
		Mechanics:      service.NewMechanicService(store),
		Inventory:      service.NewInventoryService(store),
		ServiceTickets: service.NewServiceTicketService(service.ServiceTicketDependencies{Store: store}),
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		zap.Int("customers", summary.Customers),
		zap.Int("mechanics", summary.Mechanics),
		zap.Int("parts", summary.Parts),
		zap.Int("service_tickets", summary.Tickets))
	return nil
}
