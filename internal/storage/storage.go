// Package storage keeps rendered report documents on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"time"
)

const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"

	DefaultMaxRetries        = 3
	DefaultRetryDelay        = time.Second
	DefaultPresignExpiration = time.Hour

	maxKeyLength = 1024
)

// ErrNotFound is returned when no file exists under a key.
var ErrNotFound = errors.New("file not found")

// Storage stores report files under slash separated keys.
type Storage interface {
	Save(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetPresignedURL returns a URL the file can be fetched from without
	// further credentials.
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)

	JoinPath(elem ...string) string
	ValidateKey(key string) error
}

// S3Config configures the S3 backend.
type S3Config struct {
	Region         string
	Bucket         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// LocalConfig configures the local disk backend.
type LocalConfig struct {
	BasePath    string
	Permissions os.FileMode
	CreateDirs  bool
}
