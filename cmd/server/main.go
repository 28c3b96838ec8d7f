package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"report_gen/internal/auth"
	"report_gen/internal/config"
	"report_gen/internal/database"
	"report_gen/internal/logging"
	"report_gen/internal/report"
	"report_gen/internal/server"
	"report_gen/internal/service"
	"report_gen/internal/storage"

	"github.com/sirupsen/logrus"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			provideLogger,
			provideDatabase,
			storage.NewStorageFromConfig,
			fx.Annotate(service.NewGormReportRepository, fx.As(new(service.ReportRepository))),
			fx.Annotate(service.NewGormItemRepository, fx.As(new(service.ItemRepository))),
			provideGenerator,
			fx.Annotate(service.NewReportService, fx.As(new(service.ReportService))),
			provideTokens,
			server.NewServer,
		),
		fx.Invoke(registerLifecycleHooks),
	)

	runWithGracefulShutdown(app)
}

func provideLogger(cfg config.Config) *logrus.Logger {
	logger := logging.New(cfg.Logging, os.Stdout)
	logger.WithField("config", cfg.String()).Info("Starting report service")
	return logger
}

func provideDatabase(cfg config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := database.NewDatabase(database.ConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, logger); err != nil {
		return nil, err
	}
	return db, nil
}

// provideGenerator backs stored-item renders with the item repository.
func provideGenerator(items service.ItemRepository) *report.Generator {
	return report.NewGenerator(items)
}

func provideTokens(cfg config.Config) *auth.JWTManager {
	return auth.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
}

func registerLifecycleHooks(
	srv *server.Server,
	db *gorm.DB,
	cfg config.Config,
	logger *logrus.Logger,
	lc fx.Lifecycle,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("HTTP server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

func runWithGracefulShutdown(app *fx.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		logrus.WithError(err).Fatal("Failed to start application")
	}

	<-quit
	logrus.Info("Shutdown signal received")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		logrus.WithError(err).Error("Shutdown failed")
		os.Exit(1)
	}

	logrus.Info("Report service stopped")
}
