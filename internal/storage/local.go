package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage stores report files under a base directory
type LocalStorage struct {
	basePath    string
	permissions os.FileMode
	createDirs  bool
}

// NewLocalStorage creates a new local storage
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if err := validateLocalConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid local storage configuration: %w", err)
	}

	if cfg.CreateDirs {
		if err := os.MkdirAll(cfg.BasePath, cfg.Permissions); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	return &LocalStorage{
		basePath:    cfg.BasePath,
		permissions: cfg.Permissions,
		createDirs:  cfg.CreateDirs,
	}, nil
}

// Save writes a file to disk
func (l *LocalStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	fullPath := l.getFullPath(key)

	if l.createDirs {
		if err := os.MkdirAll(filepath.Dir(fullPath), l.permissions); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return file.Close()
}

// Get opens a file from disk
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(l.getFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from disk; a missing file is not an error
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.getFullPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks whether a file exists on disk
func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.getFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// GetPresignedURL returns a file URL; local files need no signing
func (l *LocalStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "file://" + filepath.ToSlash(l.getFullPath(key)), nil
}

// JoinPath joins key elements with slashes
func (l *LocalStorage) JoinPath(elem ...string) string {
	return path.Join(elem...)
}

// ValidateKey rejects keys that could escape the base directory
func (l *LocalStorage) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("file key cannot be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("file key cannot contain '..'")
	}
	return nil
}

func (l *LocalStorage) getFullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func validateLocalConfig(cfg LocalConfig) error {
	if cfg.BasePath == "" {
		return fmt.Errorf("base path cannot be empty")
	}
	if !filepath.IsAbs(cfg.BasePath) {
		return fmt.Errorf("base path must be absolute")
	}
	return nil
}
