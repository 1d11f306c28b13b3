package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/config"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

const serviceName = "service-kennel"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "kennel",
		Short:         "Dog breeding registry service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), migrateCommand(), sweepPhotosCommand(), tokenCommand())
	return root
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.ServiceConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

// openDatabase connects and brings the schema up to date. Development and
// SQLite use GORM auto-migration; PostgreSQL elsewhere uses the SQL migrations.
func openDatabase(cfg *config.ServiceConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBConfig, log)
	if err != nil {
		return nil, err
	}
	if cfg.AppEnv == "development" || cfg.DBConfig.Driver == database.DriverSQLite {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		if err := identity.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (auto-migrate)")
		return db, nil
	}
	if err := database.RunMigrations(cfg.DBConfig.Postgres.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
		return nil, err
	}
	return db, nil
}
