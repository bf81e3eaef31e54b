package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/BradenHooton/tiktok-automation/internal/config"
)

// Backend is where uploaded schedule videos end up.
type Backend interface {
	Prepare(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Location() string
}

var errEmptyKey = errors.New("empty video key")

// VideoStore writes and removes schedule videos on the configured backend.
// Missing videos delete cleanly on every backend.
type VideoStore struct {
	backend Backend
}

func NewVideoStore(backend Backend) *VideoStore {
	return &VideoStore{backend: backend}
}

// New opens the backend named by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig) (*VideoStore, error) {
	var (
		backend Backend
		err     error
	)

	switch cfg.Backend {
	case config.StorageLocal, "":
		backend, err = NewLocalDisk(".")
	case config.StorageS3:
		backend, err = NewS3Backend(ctx, cfg.S3)
	case config.StorageMinio:
		backend, err = NewMinioBackend(cfg.Minio)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s video storage: %w", cfg.Backend, err)
	}

	return NewVideoStore(backend), nil
}

// Prepare creates the bucket or directory videos are written to
func (s *VideoStore) Prepare(ctx context.Context) error {
	if err := s.backend.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare %s: %w", s.backend.Location(), err)
	}
	return nil
}

func (s *VideoStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return fmt.Errorf("failed to store video %s: %w", key, err)
	}
	return nil
}

func (s *VideoStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove video %s: %w", key, err)
	}
	return nil
}

// Location names the bucket or directory for logs
func (s *VideoStore) Location() string {
	return s.backend.Location()
}
