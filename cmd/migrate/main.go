package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/salon-crm/backend/internal/domain/shared"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/infrastructure/persistence"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/guard"
	"github.com/salon-crm/backend/internal/infrastructure/persistence/store"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		timeout  time.Duration
	)
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the command after this long")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.ParseGormLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	opener, err := persistence.NewOpener(cfg.Database, persistence.GormConfig(gormLog))
	if err != nil {
		log.Fatal("Invalid database configuration", zap.Error(err))
	}
	registry := store.NewRegistry(cfg.Database.StorePrefix, opener,
		store.WithOpenHook(guard.OpenHook),
		store.WithOpenTimeout(cfg.Database.OpenTimeout),
	)
	manager := persistence.NewStoreManager(registry, persistence.NewModelFactory(nil))
	defer func() {
		if err := manager.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
		if closer, ok := opener.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Info("Store migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
		zap.String("main_store", registry.MainStoreName()),
	)

	switch command {
	case "up":
		report, err := manager.MigrateAll(ctx, log)
		if err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Stores migrated",
			zap.Int("businesses", report.Businesses),
			zap.Strings("failed", report.Failed),
		)
		if len(report.Failed) > 0 {
			os.Exit(2)
		}

	case "stores":
		if err := listStores(ctx, manager); err != nil {
			log.Fatal("Failed to list stores", zap.Error(err))
		}

	case "prune-reset-tokens":
		repos, err := manager.MainRepositories(ctx)
		if err != nil {
			log.Fatal("Failed to open main store", zap.Error(err))
		}
		n, err := repos.PasswordResetTokens.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal("Failed to prune reset tokens", zap.Error(err))
		}
		log.Info("Expired reset tokens deleted", zap.Int64("count", n))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// listStores prints every business with the store backing it.
func listStores(ctx context.Context, manager *persistence.StoreManager) error {
	repos, err := manager.MainRepositories(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %-10s %s\n", "CODE", "STATUS", "STORE")
	fmt.Printf("%-10s %-10s %s\n", "-", "-", manager.Registry().MainStoreName())

	filter := shared.DefaultFilter()
	filter.Limit = shared.MaxLimit
	filter.OrderBy = "code"
	filter.OrderDir = "asc"
	for {
		businesses, total, err := repos.Businesses.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, b := range businesses {
			name, err := manager.Registry().StoreName(b.TenantID())
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-10s %s\n", b.Code, b.Status, name)
		}
		if len(businesses) == 0 || int64(filter.Page*filter.Limit) >= total {
			return nil
		}
		filter.Page++
	}
}

func printUsage() {
	fmt.Println(`Salon CRM Store Migration Tool

Usage:
  migrate [flags] <command>

Commands:
  up                    Create missing tables in the main store and every business store
  stores                List every business with the name of its store
  prune-reset-tokens    Delete expired password reset tokens

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)
  -timeout duration     Abort the command after this long (default: 10m)

Environment Variables:
  SALON_DATABASE_DRIVER, SALON_DATABASE_URI (or DATABASE_URL), SALON_DATABASE_STORE_PREFIX

Examples:
  # Bring every store up to the current schema
  migrate up

  # Show which database each business lives in
  migrate stores`)
}
