package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/SARVESHVARADKAR123/courtroom/internal/domain"
	"github.com/SARVESHVARADKAR123/courtroom/internal/repository/postgres"
	"github.com/SARVESHVARADKAR123/courtroom/internal/repository/sqlite"
)

// Repository is the persistence boundary for message records.
// Get, Update and Delete return domain.ErrNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, r *domain.Record) error
	Get(ctx context.Context, id int64) (*domain.Record, error)
	// List returns every record ordered by timestamp, newest first.
	List(ctx context.Context) ([]*domain.Record, error)
	Update(ctx context.Context, r *domain.Record) error
	Delete(ctx context.Context, id int64) error
	PingContext(ctx context.Context) error
	Close() error
}

// Open picks a driver from the URL scheme: postgres:// or postgresql:// use lib/pq,
// sqlite:<path> uses the pure Go sqlite driver. The schema is created if missing.
func Open(ctx context.Context, url string) (Repository, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		db, err := postgres.NewDB(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := &postgres.Repository{DB: db}
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return repo, nil

	case strings.HasPrefix(url, "sqlite:"):
		repo, err := sqlite.New(ctx, strings.TrimPrefix(url, "sqlite:"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("%w: unsupported database url scheme", domain.ErrValidation)
	}
}
