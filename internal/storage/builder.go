package storage

import (
	"fmt"

	"report_gen/internal/config"

	"github.com/sirupsen/logrus"
)

// StorageBuilder assembles a Storage from the application config.
type StorageBuilder struct {
	config config.Config
	logger *logrus.Logger
}

// NewStorageBuilder creates a new storage builder
func NewStorageBuilder(cfg config.Config, logger *logrus.Logger) *StorageBuilder {
	return &StorageBuilder{
		config: cfg,
		logger: logger,
	}
}

// Build creates the configured backend wrapped in middleware
func (b *StorageBuilder) Build() (Storage, error) {
	switch b.config.Storage.Type {
	case StorageTypeS3:
		storage, err := NewS3Storage(b.buildS3Config())
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return b.wrapWithMiddleware(storage), nil

	case StorageTypeLocal:
		storage, err := NewLocalStorage(b.buildLocalConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
		return b.wrapWithMiddleware(storage), nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", b.config.Storage.Type)
	}
}

func (b *StorageBuilder) buildS3Config() S3Config {
	return S3Config{
		Region:         b.config.Storage.S3.Region,
		Bucket:         b.config.Storage.S3.Bucket,
		Endpoint:       b.config.Storage.S3.Endpoint,
		AccessKey:      b.config.Storage.S3.AccessKey,
		SecretKey:      b.config.Storage.S3.SecretKey,
		ForcePathStyle: b.config.Storage.S3.Endpoint != "",
	}
}

func (b *StorageBuilder) buildLocalConfig() LocalConfig {
	return LocalConfig{
		BasePath:    b.config.Storage.BasePath,
		Permissions: 0o755,
		CreateDirs:  true,
	}
}

// wrapWithMiddleware orders the layers validation -> retry -> logging -> backend
func (b *StorageBuilder) wrapWithMiddleware(storage Storage) Storage {
	if b.logger != nil {
		storage = NewLoggingMiddleware(storage, b.logger)
	}
	storage = NewRetryMiddleware(storage, DefaultMaxRetries, DefaultRetryDelay, b.logger)
	return NewValidationMiddleware(storage)
}

// NewStorageFromConfig creates the storage described by cfg
func NewStorageFromConfig(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	return NewStorageBuilder(cfg, logger).Build()
}
