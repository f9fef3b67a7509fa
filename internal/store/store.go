package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when nothing is stored under a key.
	ErrNotFound = errors.New("no record for key")

	errUnknownDriver = errors.New("unknown store driver")
)

// Backend is a durable key/value store for serialized records.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver      string // memory, file, sqlite or postgres
	Path        string // directory for file, database file for sqlite
	DatabaseURL string // postgres connection string
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStore(opts.Path)
	case "memory":
		return NewMemoryStore(0), nil
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "postgres":
		return NewPostgresStore(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownDriver, opts.Driver)
	}
}
