// Package main migrates the report database and optionally seeds its items.
package main

import (
	"context"
	"fmt"
	"os"

	"report_gen/internal/config"
	"report_gen/internal/database"
	"report_gen/internal/importer"
	"report_gen/internal/logging"
	"report_gen/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newMigrateCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the report schema",
		Long: `Migrate creates the items and reports tables. With --items the stored item
set is replaced by the contents of the given .xlsx, .yaml or .json file.

Driver and DSN default to APP_DATABASE_DRIVER and APP_DATABASE_DSN.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMigrate,
	}

	cmd.Flags().String("driver", envOr("APP_DATABASE_DRIVER", "sqlite"), "Database driver (postgres or sqlite)")
	cmd.Flags().String("dsn", envOr("APP_DATABASE_DSN", "report_gen.db"), "Database DSN")
	cmd.Flags().String("items", "", "Item file to seed")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	driver, _ := cmd.Flags().GetString("driver")
	dsn, _ := cmd.Flags().GetString("dsn")
	itemsPath, _ := cmd.Flags().GetString("items")

	logger := logging.New(config.Logging{Level: "info", Format: "text"}, cmd.ErrOrStderr())

	db, err := database.NewDatabase(database.Config{Driver: driver, DSN: dsn})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db, logger); err != nil {
		return err
	}

	if itemsPath != "" {
		items, err := importer.LoadFile(itemsPath)
		if err != nil {
			return err
		}
		if err := service.NewGormItemRepository(db, logger).ReplaceItems(context.Background(), items); err != nil {
			return fmt.Errorf("failed to seed items: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"file":  itemsPath,
			"count": len(items),
		}).Info("Items seeded")
	}

	logger.Info("Migrations completed successfully")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
