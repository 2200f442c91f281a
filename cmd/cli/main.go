package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/akeren/launchlist/config"
	"github.com/akeren/launchlist/domain/waitlist"
	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/pkg/constants"
	"github.com/akeren/launchlist/pkg/migrations"
	"github.com/akeren/launchlist/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := runMigrate(logger); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("Database migrations completed")

	case "migrate-status":
		if err := runMigrateStatus(logger); err != nil {
			logger.Error("Failed to read migration status", "error", err.Error())
			os.Exit(1)
		}

	case "count":
		projectName := constants.WaitlistProjectName
		if len(args) > 1 {
			projectName = args[1]
		}
		if err := runCount(logger, projectName); err != nil {
			logger.Error("Failed to count waitlist entries", "error", err.Error())
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func migrationsConfig(logger *log.Logger) migrations.Config {
	driver := config.DatabaseDriver()
	return migrations.Config{
		Dir:    utils.EnvString("MIGRATIONS_DIR", "migrations/"+driver),
		Driver: driver,
		Logger: logger,
	}
}

func withDatabase(logger *log.Logger, fn func(db *gorm.DB) error) error {
	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	return fn(db)
}

func runMigrate(logger *log.Logger) error {
	return withDatabase(logger, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get SQL DB instance: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		return migrations.Up(ctx, sqlDB, migrationsConfig(logger))
	})
}

func runMigrateStatus(logger *log.Logger) error {
	return withDatabase(logger, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get SQL DB instance: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		status, err := migrations.CurrentStatus(ctx, sqlDB, migrationsConfig(logger))
		if err != nil {
			return err
		}

		if status.Pending {
			fmt.Println("no migrations applied")
			return nil
		}
		fmt.Printf("version=%d dirty=%t\n", status.Version, status.Dirty)
		return nil
	})
}

func runCount(logger *log.Logger, projectName string) error {
	return withDatabase(logger, func(db *gorm.DB) error {
		service := waitlist.NewWaitlistServiceFactory(db, logger, nil, constants.DefaultWaitlistRateLimitRequests).CreateService()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		count, err := service.CountEntries(ctx, projectName)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d\n", projectName, count)
		return nil
	})
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate           Run database migrations and exit")
	fmt.Println("  migrate-status    Print the applied schema version")
	fmt.Println("  count [project]   Print the number of waitlist entries (default project: " + constants.WaitlistProjectName + ")")
}
